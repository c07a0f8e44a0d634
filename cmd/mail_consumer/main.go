package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/SeakMengs/AutoSign/internal/database"
	"github.com/SeakMengs/AutoSign/internal/env"
	"github.com/SeakMengs/AutoSign/internal/mailer"
	"github.com/SeakMengs/AutoSign/internal/queue"
	"github.com/SeakMengs/AutoSign/internal/repository"
	"github.com/SeakMengs/AutoSign/internal/util"
	"gorm.io/gorm"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	var mail mailer.Client
	switch cfg.Mail.PROVIDER {
	case "gmail":
		mail = mailer.NewGmailMailer(cfg.Mail.GMAIL_USERNAME, cfg.Mail.GMAIL_APP_PASSWORD, logger)
	default:
		mail = mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	}

	repo := repository.NewRepository(db, logger)
	app := queue.MailConsumerContext{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	ctx := context.Background()

	if err := rabbitMQ.ConsumeMailJob(ctx, mailJobHandler, util.DetermineWorkers(MAX_WORKER), &app); err != nil {
		logger.Fatalf("Failed to consume mail job: %v", err)
	}

	logger.Infof("Started consuming mail job")

	// Block forever to keep the consumer running
	select {}
}

// mailJobHandler returns whether a failed job is worth another try.
func mailJobHandler(ctx context.Context, jobPayload queue.MailJobPayload, app *queue.MailConsumerContext) (bool, error) {
	switch jobPayload.TemplateFile {
	case mailer.TemplateSigningInvitation:
		var data mailer.SigningInvitationData
		if err := json.Unmarshal(jobPayload.Data, &data); err != nil {
			return false, fmt.Errorf("failed to unmarshal SigningInvitationData: %w", err)
		}

		session, err := app.Repository.SigningSession.GetByID(ctx, nil, data.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, fmt.Errorf("signing session not found: %s", data.SessionID)
			}

			return true, fmt.Errorf("failed to get signing session: %w", err)
		}

		if !strings.EqualFold(session.SignerEmail, jobPayload.ToEmail) {
			return false, fmt.Errorf("email %s does not match signing session email %s", jobPayload.ToEmail, session.SignerEmail)
		}

		// the link was replaced or already used while the job waited
		if !session.IsPending() {
			app.Logger.Infof("Skip invitation of session %s with status %s", session.ID, session.Status)
			return false, nil
		}

		status, err := app.Mailer.Send(jobPayload.TemplateFile, jobPayload.ToEmail, data)
		if err != nil {
			return true, fmt.Errorf("failed to send email: %w", err)
		}

		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return true, fmt.Errorf("email sending failed with status: %d", status)
		}

		return true, nil
	default:
		return false, fmt.Errorf("unsupported template: %s", jobPayload.TemplateFile)
	}
}
