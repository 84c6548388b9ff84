package Controllers

import (
	"net/http"

	"github.com/ArthurLima05/app.renatalyra/Events"
	"github.com/ArthurLima05/app.renatalyra/Models"
	"github.com/gin-gonic/gin"
)

func FetchNotifications(c *gin.Context) {
	var notifications []Models.Notification
	if err := Models.DB.Model(&Models.Notification{}).Order("created_at desc").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func UnreadNotificationCount(c *gin.Context) {
	var count int64
	if err := Models.DB.Model(&Models.Notification{}).Where("read = ?", false).Count(&count).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func MarkNotificationRead(c *gin.Context) {
	var input struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var notification Models.Notification
	if err := Models.DB.First(&notification, input.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	notification.Read = true
	if err := Models.DB.Save(&notification).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish(Events.OpUpdate, Events.TableNotifications, notification.ID, notification)

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllNotificationsRead(c *gin.Context) {
	var unread []Models.Notification
	if err := Models.DB.Where("read = ?", false).Find(&unread).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.DB.Model(&Models.Notification{}).Where("read = ?", false).Update("read", true).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, notification := range unread {
		notification.Read = true
		publish(Events.OpUpdate, Events.TableNotifications, notification.ID, notification)
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
