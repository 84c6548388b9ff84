package Whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/ArthurLima05/app.renatalyra/Constants"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
	whatsapp_chatbot_golang "github.com/green-api/whatsapp-chatbot-golang"
)

// Listen runs the green-api bot that receives patient replies to the
// confirmation messages and routes them into the side-channel operations.
func Listen() {
	bot := whatsapp_chatbot_golang.NewBot(os.Getenv("GREEN_API_INSTANCE"), os.Getenv("GREEN_API_TOKEN"))

	bot.SetStartScene(replyScene{})

	bot.StartReceivingNotifications()
}

type replyScene struct {
}

func (s replyScene) Start(bot *whatsapp_chatbot_golang.Bot) {
	bot.IncomingMessageHandler(func(message *whatsapp_chatbot_golang.Notification) {
		text, err := message.Text()
		if err != nil {
			return
		}
		phone := senderPhone(message)
		if phone == "" {
			return
		}

		switch strings.ToLower(strings.TrimSpace(text)) {
		case "1", "confirm", "confirmar":
			if _, err := ProcessResponse(Models.DB, ButtonConfirm, phone); err != nil {
				log.Printf("whatsapp: confirm reply from %s: %v", phone, err)
			}
		case "2", "cancel", "cancelar":
			if _, err := ProcessResponse(Models.DB, ButtonCancel, phone); err != nil {
				log.Printf("whatsapp: cancel reply from %s: %v", phone, err)
			}
		case "3", "reschedule", "remarcar":
			if _, err := RequestReschedule(Models.DB, phone, 0, ""); err != nil {
				log.Printf("whatsapp: reschedule reply from %s: %v", phone, err)
			}
		}
	})
}

// senderPhone digs the sender chat id out of the webhook body. Chat ids look
// like "5581999998888@c.us".
func senderPhone(message *whatsapp_chatbot_golang.Notification) string {
	senderData, ok := message.Body["senderData"].(map[string]interface{})
	if !ok {
		return ""
	}
	sender, ok := senderData["sender"].(string)
	if !ok {
		return ""
	}
	return strings.TrimSuffix(sender, "@c.us")
}

// SendMessage delivers one outbound message through the WhatsApp gateway.
func SendMessage(phone, message string) error {
	payload, err := json.Marshal(map[string]string{"phone": phone, "message": message})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, Constants.WhatsappGoService+"/send/message", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("whatsapp gateway returned %d: %s", res.StatusCode, string(body))
	}
	return nil
}

// CheckLogin reports whether the gateway has a linked device.
func CheckLogin(c *gin.Context) {
	req, err := http.NewRequest(http.MethodGet, Constants.WhatsappGoService+"/app/devices", nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var output struct {
		Results []struct {
			Name   string `json:"name"`
			Device string `json:"device"`
		} `json:"results"`
	}
	if err = json.Unmarshal(body, &output); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if len(output.Results) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Not Logged In"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged In"})
}
