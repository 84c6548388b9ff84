package FirebaseMessaging

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

var (
	app             *firebase.App
	messagingClient *messaging.Client
)

func Setup() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		log.Println("FIREBASE_SERVICE_ACCOUNT_PATH not set, will use application default credentials")
	}

	ctx := context.Background()
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(ctx, nil, opt)
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}

	if err != nil {
		log.Fatalf("Failed to initialize Firebase app: %v", err)
	}

	messagingClient, err = app.Messaging(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase messaging client: %v", err)
	}

	log.Println("Firebase messaging client initialized successfully")
}

// SendMessage pushes one notification to the given device tokens. The Data map
// carries patient/appointment ids so the staff app can deep-link straight to
// the record.
func SendMessage(req Models.NotificationRequest) error {
	if messagingClient == nil {
		// Setup was skipped (tests, or push disabled); nothing to deliver.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := &messaging.Notification{
		Title: req.Title,
		Body:  req.Body,
	}
	android := &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:    "default",
			Priority: messaging.PriorityHigh,
		},
	}
	apns := &messaging.APNSConfig{
		Headers: map[string]string{
			"apns-priority": "10",
		},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Alert: &messaging.ApsAlert{
					Title: req.Title,
					Body:  req.Body,
				},
				Sound: "default",
			},
		},
	}

	switch {
	case len(req.Tokens) == 1:
		message := &messaging.Message{
			Token:        req.Tokens[0],
			Notification: notification,
			Data:         req.Data,
			Android:      android,
			APNS:         apns,
		}
		if _, err := messagingClient.Send(ctx, message); err != nil {
			log.Printf("Error sending message: %v", err)
			return err
		}
	case len(req.Tokens) > 1:
		_, err := messagingClient.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       req.Tokens,
			Notification: notification,
			Data:         req.Data,
			Android:      android,
			APNS:         apns,
		})
		if err != nil {
			log.Printf("Error sending multicast message: %v", err)
			return err
		}
	}
	return nil
}

// PushNotification fans a stored notification out to every staff device.
func PushNotification(notification Models.Notification) {
	fcms, err := Models.GetStaffFCMs()
	if err != nil || len(fcms) == 0 {
		return
	}

	data := map[string]string{"type": notification.Type}
	if notification.PatientID != nil {
		data["patient_id"] = strconv.FormatUint(uint64(*notification.PatientID), 10)
	}
	if notification.AppointmentID != nil {
		data["appointment_id"] = strconv.FormatUint(uint64(*notification.AppointmentID), 10)
	}

	if err := SendMessage(Models.NotificationRequest{
		Tokens: fcms,
		Title:  notification.Title,
		Body:   notification.Message,
		Data:   data,
	}); err != nil {
		log.Printf("Failed to push notification %d: %v", notification.ID, err)
	}
}
