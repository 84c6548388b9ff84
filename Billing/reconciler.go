package Billing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Reconciler keeps session payment status, installment paid flags and the
// transaction ledger consistent with each other. It is the only code that
// mutates those fields outside an explicit user edit.
//
// Every sub-step error is wrapped with the step name and returned as-is;
// already committed steps stay committed, there is no retry.
type Reconciler struct {
	DB  *gorm.DB
	Bus *Events.Bus
}

func NewReconciler(db *gorm.DB, bus *Events.Bus) *Reconciler {
	return &Reconciler{DB: db, Bus: bus}
}

// SessionInput carries everything needed to create a session, optionally with
// an installment plan. A plan requires InstallmentCount >= 2 and a first due
// date; anything less persists the session alone.
type SessionInput struct {
	PatientID        uint    `json:"patient_id"`
	ProfessionalID   *uint   `json:"professional_id"`
	Date             string  `json:"date"`
	Label            string  `json:"type"`
	Kind             string  `json:"session_type"`
	Status           string  `json:"status"`
	Notes            string  `json:"notes"`
	Amount           float64 `json:"amount"`
	PaymentStatus    string  `json:"payment_status"`
	NextAppointment  string  `json:"next_appointment"`
	InstallmentCount uint    `json:"installment_count"`
	FirstDueDate     string  `json:"first_due_date"`
}

// SessionUpdate is a partial edit; nil fields are left untouched.
type SessionUpdate struct {
	Date            *string  `json:"date"`
	Label           *string  `json:"type"`
	Kind            *string  `json:"session_type"`
	Status          *string  `json:"status"`
	Notes           *string  `json:"notes"`
	Amount          *float64 `json:"amount"`
	PaymentStatus   *string  `json:"payment_status"`
	NextAppointment *string  `json:"next_appointment"`
}

// CreateSession persists the session and, when a plan was requested, its
// installments. The installments are written in one store transaction, so the
// plan exists completely or not at all; the session itself is already
// committed by then and survives a plan failure.
func (r *Reconciler) CreateSession(input SessionInput) (Models.Session, error) {
	if input.Amount < 0 {
		return Models.Session{}, errors.New("session amount must not be negative")
	}

	hasPlan := input.InstallmentCount >= 2 && input.FirstDueDate != ""

	session := Models.Session{
		PatientID:       input.PatientID,
		ProfessionalID:  input.ProfessionalID,
		Date:            input.Date,
		Label:           input.Label,
		Kind:            input.Kind,
		Status:          input.Status,
		Notes:           input.Notes,
		Amount:          input.Amount,
		PaymentStatus:   input.PaymentStatus,
		NextAppointment: input.NextAppointment,
	}
	if session.Status == "" {
		session.Status = Constants.StatusCompleted
	}
	if session.PaymentStatus == "" || hasPlan {
		// Installments imply deferred payment.
		session.PaymentStatus = Constants.PaymentOpen
	}

	if err := r.DB.Create(&session).Error; err != nil {
		return Models.Session{}, fmt.Errorf("persist session: %w", err)
	}
	r.publish(Events.OpInsert, Events.TableSessions, session.ID, session)

	if hasPlan {
		installments, err := r.generatePlan(&session, input.InstallmentCount, input.FirstDueDate)
		if err != nil {
			return session, fmt.Errorf("generate installment plan: %w", err)
		}
		for _, installment := range installments {
			r.publish(Events.OpInsert, Events.TableInstallments, installment.ID, installment)
		}
		return session, nil
	}

	if session.PaymentStatus == Constants.PaymentPaid && session.Amount > 0 {
		if _, err := r.recordIncome(&session, session.Amount, session.Date, ""); err != nil {
			return session, fmt.Errorf("record payment transaction: %w", err)
		}
	}

	return session, nil
}

func (r *Reconciler) generatePlan(session *Models.Session, count uint, firstDue string) ([]Models.Installment, error) {
	first, err := time.Parse(dateLayout, firstDue)
	if err != nil {
		return nil, fmt.Errorf("parse first due date %q: %w", firstDue, err)
	}

	amounts := SplitAmount(session.Amount, count)
	installments := make([]Models.Installment, count)
	for i := uint(0); i < count; i++ {
		installments[i] = Models.Installment{
			SessionID:     session.ID,
			Number:        i + 1,
			Total:         count,
			Amount:        amounts[i],
			PredictedDate: first.AddDate(0, int(i), 0).Format(dateLayout),
			Paid:          false,
		}
	}

	err = r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range installments {
			if err := tx.Create(&installments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return installments, nil
}

// SplitAmount divides total into count equal parts in whole cents, with the
// last part absorbing the remainder so the parts always sum to the total.
func SplitAmount(total float64, count uint) []float64 {
	cents := int64(math.Round(total * 100))
	base := cents / int64(count)
	amounts := make([]float64, count)
	for i := range amounts {
		amounts[i] = float64(base) / 100
	}
	amounts[count-1] = float64(cents-base*int64(count-1)) / 100
	return amounts
}

// UpdateSession applies a partial edit. A transition from open to paid creates
// the single income transaction only when the session has no installment plan;
// with a plan, settlement of the installments owns transaction creation and
// this path must never double-book the revenue.
func (r *Reconciler) UpdateSession(id uint, changes SessionUpdate) (Models.Session, error) {
	var session Models.Session
	if err := r.DB.First(&session, id).Error; err != nil {
		return Models.Session{}, fmt.Errorf("load session: %w", err)
	}

	wasOpen := session.PaymentStatus == Constants.PaymentOpen

	if changes.Date != nil {
		session.Date = *changes.Date
	}
	if changes.Label != nil {
		session.Label = *changes.Label
	}
	if changes.Kind != nil {
		session.Kind = *changes.Kind
	}
	if changes.Status != nil {
		session.Status = *changes.Status
	}
	if changes.Notes != nil {
		session.Notes = *changes.Notes
	}
	if changes.Amount != nil {
		if *changes.Amount < 0 {
			return Models.Session{}, errors.New("session amount must not be negative")
		}
		session.Amount = *changes.Amount
	}
	if changes.PaymentStatus != nil {
		session.PaymentStatus = *changes.PaymentStatus
	}
	if changes.NextAppointment != nil {
		session.NextAppointment = *changes.NextAppointment
	}

	if err := r.DB.Save(&session).Error; err != nil {
		return Models.Session{}, fmt.Errorf("persist session: %w", err)
	}
	r.publish(Events.OpUpdate, Events.TableSessions, session.ID, session)

	if wasOpen && session.PaymentStatus == Constants.PaymentPaid {
		var planned int64
		if err := r.DB.Model(&Models.Installment{}).Where("session_id = ?", session.ID).Count(&planned).Error; err != nil {
			return session, fmt.Errorf("check installment plan: %w", err)
		}
		if planned == 0 && session.Amount > 0 {
			if _, err := r.recordIncome(&session, session.Amount, time.Now().Format(dateLayout), ""); err != nil {
				return session, fmt.Errorf("record payment transaction: %w", err)
			}
		}
	}

	return session, nil
}

// SettleInstallment marks an installment paid, records its income transaction
// and flips the parent session to paid once no unpaid installment remains.
// Settling an already paid installment is a no-op. The all-paid check runs
// against the post-update set by excluding the settled row by id instead of
// trusting a possibly stale in-memory collection.
func (r *Reconciler) SettleInstallment(id uint, paidDate string) (Models.Installment, error) {
	var installment Models.Installment
	if err := r.DB.First(&installment, id).Error; err != nil {
		return Models.Installment{}, fmt.Errorf("load installment: %w", err)
	}

	if installment.Paid {
		return installment, nil
	}

	if paidDate == "" {
		paidDate = time.Now().Format(dateLayout)
	}

	installment.Paid = true
	installment.PaidDate = paidDate
	if err := r.DB.Save(&installment).Error; err != nil {
		return Models.Installment{}, fmt.Errorf("settle installment: %w", err)
	}
	r.publish(Events.OpUpdate, Events.TableInstallments, installment.ID, installment)

	// The parent session may have been deleted since the plan was created;
	// the settlement still stands, only the dependent steps are skipped.
	var session Models.Session
	sessionMissing := false
	if err := r.DB.First(&session, installment.SessionID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return installment, fmt.Errorf("load parent session: %w", err)
		}
		sessionMissing = true
	}

	prefix := fmt.Sprintf("Installment %d/%d", installment.Number, installment.Total)
	var transaction *Models.Transaction
	var err error
	if sessionMissing {
		transaction, err = r.createTransaction(Models.Transaction{
			Type:        Constants.TransactionIncome,
			Description: prefix,
			Category:    "session",
			Amount:      installment.Amount,
			Date:        paidDate,
		})
	} else {
		transaction, err = r.recordIncome(&session, installment.Amount, paidDate, prefix)
	}
	if err != nil {
		return installment, fmt.Errorf("record installment transaction: %w", err)
	}

	installment.TransactionID = &transaction.ID
	if err := r.DB.Save(&installment).Error; err != nil {
		return installment, fmt.Errorf("link installment transaction: %w", err)
	}
	r.publish(Events.OpUpdate, Events.TableInstallments, installment.ID, installment)

	if sessionMissing {
		return installment, nil
	}

	var unpaid int64
	if err := r.DB.Model(&Models.Installment{}).
		Where("session_id = ? AND id <> ? AND paid = ?", installment.SessionID, installment.ID, false).
		Count(&unpaid).Error; err != nil {
		return installment, fmt.Errorf("check remaining installments: %w", err)
	}

	if unpaid == 0 && session.PaymentStatus != Constants.PaymentPaid {
		session.PaymentStatus = Constants.PaymentPaid
		if err := r.DB.Save(&session).Error; err != nil {
			return installment, fmt.Errorf("update session payment status: %w", err)
		}
		r.publish(Events.OpUpdate, Events.TableSessions, session.ID, session)
	}

	return installment, nil
}

// recordIncome writes one income transaction linked to the session and its
// patient. The description is composed from the available parts only.
func (r *Reconciler) recordIncome(session *Models.Session, amount float64, date, prefix string) (*Models.Transaction, error) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if session.Label != "" {
		parts = append(parts, session.Label)
	} else if session.Kind != "" {
		parts = append(parts, session.Kind)
	}

	var patient Models.Patient
	if err := r.DB.First(&patient, session.PatientID).Error; err == nil {
		parts = append(parts, patient.Name)
	}
	if len(parts) == 0 {
		parts = append(parts, "Session payment")
	}

	sessionID := session.ID
	patientID := session.PatientID
	return r.createTransaction(Models.Transaction{
		Type:        Constants.TransactionIncome,
		Description: strings.Join(parts, " - "),
		Category:    "session",
		Amount:      amount,
		Date:        date,
		PatientID:   &patientID,
		SessionID:   &sessionID,
	})
}

func (r *Reconciler) createTransaction(transaction Models.Transaction) (*Models.Transaction, error) {
	if err := r.DB.Create(&transaction).Error; err != nil {
		return nil, err
	}
	r.publish(Events.OpInsert, Events.TableTransactions, transaction.ID, transaction)
	return &transaction, nil
}

func (r *Reconciler) publish(op, table string, id uint, row interface{}) {
	if r.Bus == nil {
		return
	}
	r.Bus.Publish(Events.ChangeEvent{Op: op, Table: table, ID: id, Row: row})
}
