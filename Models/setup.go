package Models

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDataBase() {

	err := godotenv.Load(".env")

	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	DbHost := os.Getenv("DB_HOST")
	DbUser := os.Getenv("DB_USER")
	DbPassword := os.Getenv("DB_PASSWORD")
	DbName := os.Getenv("DB_NAME")
	DbPort := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", DbHost, DbUser, DbPassword, DbName, DbPort)
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		fmt.Println("Cannot connect to database ")
		log.Fatal("connection error:", err)
	} else {
		fmt.Println("We are connected to the database ")
	}

	Migrate(DB)
}

// Migrate runs AutoMigrate in dependency order. Shared with tests, which open
// their own sqlite connection.
func Migrate(db *gorm.DB) {
	// First migrate models with no dependencies
	db.AutoMigrate(&User{})
	db.AutoMigrate(&DeviceToken{})
	db.AutoMigrate(&Patient{})
	db.AutoMigrate(&Professional{})

	// Then migrate models that depend on the above
	db.AutoMigrate(&Session{})
	db.AutoMigrate(&Transaction{})
	db.AutoMigrate(&Feedback{})

	// Finally migrate models that depend on multiple other models
	db.AutoMigrate(&Installment{})
	db.AutoMigrate(&Appointment{})
	db.AutoMigrate(&Notification{})
}
