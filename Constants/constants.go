package Constants

// WhatsappGoService is the base URL of the WhatsApp gateway used for outbound
// messages (reminders, confirmations). Inbound replies arrive through the
// green-api bot in the Whatsapp package instead.
var WhatsappGoService = "http://localhost:3000"

// Session lifecycle statuses. Appointments share the same set.
const (
	StatusSuggested = "suggested"
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusNoShow    = "no_show"
)

// Session kinds.
const (
	SessionFirstVisit = "first_visit"
	SessionStandalone = "standalone"
	SessionFollowUp   = "follow_up"
)

// Payment statuses.
const (
	PaymentOpen = "open"
	PaymentPaid = "paid"
)

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Patient acquisition origins.
const (
	OriginGoogleAds = "google_ads"
	OriginInstagram = "instagram"
	OriginReferral  = "referral"
	OriginOther     = "other"
)

// Notification types.
const (
	NotificationBooking      = "booking"
	NotificationCancellation = "cancellation"
	NotificationNoShow       = "no_show"
	NotificationFeedback     = "feedback"
	NotificationPayment      = "payment"
)
