package main

import (
	"log"

	"github.com/ArthurLima05/app.renatalyra/Billing"
	"github.com/ArthurLima05/app.renatalyra/Cache"
	"github.com/ArthurLima05/app.renatalyra/Controllers"
	"github.com/ArthurLima05/app.renatalyra/CronJobs"
	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/FirebaseMessaging"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/ArthurLima05/app.renatalyra/Routes"
	"github.com/ArthurLima05/app.renatalyra/SSE"
	"github.com/ArthurLima05/app.renatalyra/Whatsapp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	Models.ConnectDataBase()
	FirebaseMessaging.Setup()

	Controllers.Reconciler = Billing.NewReconciler(Models.DB, Events.Default)

	mirror := Cache.NewMirror(Models.DB, Events.Default)
	if err := mirror.Start(); err != nil {
		log.Fatalf("cache mirror failed to load: %v", err)
	}
	defer mirror.Stop()
	Controllers.Mirror = mirror

	SSE.StartRelay(Events.Default)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://app.renatalyra.com", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	},
	))
	Routes.ConfigRoutes(router)

	CronJobs.NewReminders(Models.DB).Start()

	go Whatsapp.Listen()

	router.Run(":3005")
}
