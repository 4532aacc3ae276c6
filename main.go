package main

import (
	"context"
	"log"
	"os"

	"AgriDealer/Alerts"
	"AgriDealer/Constants"
	"AgriDealer/CronJobs"
	"AgriDealer/FiberConfig"
	"AgriDealer/Models"
	"AgriDealer/Slack"
	"AgriDealer/Weather"
	"AgriDealer/Whatsapp"
	"AgriDealer/email"
)

func main() {
	Constants.Load()
	if os.Getenv("APP_LOG_FILE") != "" {
		setupLogging(os.Getenv("APP_LOG_FILE"))
	}

	Models.Connect()

	weather := Weather.NewMockProvider()
	whatsapp := Whatsapp.NewClient(Constants.WhatsappGoService)

	var push CronJobs.PushNotifier
	if Constants.FirebaseCredentials != "" {
		client, err := Alerts.NewPushClient(context.Background(), Constants.FirebaseCredentials)
		if err != nil {
			log.Printf("Push notifications disabled: %v\n", err)
		} else {
			push = client
		}
	}

	reminders := CronJobs.NewReminderScheduler(Models.DB, Constants.ReminderPolicy(), whatsapp, push)
	if err := reminders.Start(Constants.ReminderSchedule); err != nil {
		log.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer reminders.Stop()

	var poster CronJobs.DigestPoster
	switch {
	case Constants.SlackBotToken != "" && Constants.SlackChannel != "":
		poster = Slack.NewDigest(Constants.SlackBotToken, Constants.SlackChannel)
	case Constants.SMTPHost != "":
		poster = email.NewDigestMailer(email.Config{
			SMTPServer: Constants.SMTPHost,
			SMTPPort:   Constants.SMTPPort,
			Username:   Constants.SMTPUser,
			Password:   Constants.SMTPPassword,
			FromEmail:  Constants.SMTPFrom,
			FromName:   "AgriDealer",
			TLSEnabled: Constants.SMTPTLS,
		})
	}
	if poster != nil {
		digest := CronJobs.NewDigestJob(Models.DB, weather, poster, Constants.ReminderPolicy(), Constants.ForecastConfig())
		if err := digest.Start(Constants.DigestSchedule); err != nil {
			log.Printf("Failed to start digest job: %v\n", err)
		} else {
			defer digest.Stop()
		}
	}

	FiberConfig.FiberConfig(weather, whatsapp)
}

func setupLogging(path string) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	// Redirect log output to the file
	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
