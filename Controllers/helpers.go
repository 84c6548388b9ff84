package Controllers

import (
	"log"

	"github.com/ArthurLima05/app.renatalyra/Billing"
	"github.com/ArthurLima05/app.renatalyra/Cache"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/FirebaseMessaging"
	"github.com/ArthurLima05/app.renatalyra/Models"
)

// Wired in main before the router starts serving.
var (
	Reconciler *Billing.Reconciler
	Mirror     *Cache.Mirror
)

func publish(op, table string, id uint, row interface{}) {
	Events.Default.Publish(Events.ChangeEvent{Op: op, Table: table, ID: id, Row: row})
}

// notifyStaff stores a notification, announces it on the bus and pushes it to
// the staff devices. Failures are logged only; a lost notification must never
// abort the user action that raised it.
func notifyStaff(notification Models.Notification) {
	if err := Models.DB.Create(&notification).Error; err != nil {
		log.Printf("could not record notification: %v", err)
		return
	}
	publish(Events.OpInsert, Events.TableNotifications, notification.ID, notification)
	FirebaseMessaging.PushNotification(notification)
}
