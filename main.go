package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"FeedbackBot/handler"
	"FeedbackBot/repo"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional; deployments can rely on the process environment.
	_ = godotenv.Load()

	adminToken := mustEnv("ADMIN_BOT_TOKEN")
	surveyToken := mustEnv("SURVEY_BOT_TOKEN")
	spreadsheetID := mustEnv("SPREADSHEET_ID")
	credentialsFile := mustEnv("GOOGLE_CREDENTIALS_FILE")
	password := mustEnv("ADMIN_PASSWORD")

	adminUsersFile := os.Getenv("ADMIN_USERS_FILE")
	if adminUsersFile == "" {
		adminUsersFile = "admin_users.json"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := repo.NewSheetStore(ctx, credentialsFile, spreadsheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to spreadsheet")
	}

	questions := repo.NewQuestionRegistry(store)
	if err := questions.SeedDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("error seeding default questions")
	}
	submissions := repo.NewSubmissionLog(store)

	admins := repo.NewAdminFile(adminUsersFile)
	if err := admins.EnsureExists(); err != nil {
		log.Fatal().Err(err).Msg("error initializing admin users file")
	}

	adminHandler := handler.NewAdminBotHandler(questions, submissions, admins, password)
	adminBot, err := bot.New(adminToken, bot.WithDefaultHandler(adminHandler.Handler))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating admin bot")
	}

	surveyHandler := handler.NewSurveyBotHandler(questions, submissions)
	surveyBot, err := bot.New(surveyToken, bot.WithDefaultHandler(surveyHandler.Handler))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating survey bot")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		adminBot.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		surveyBot.Start(ctx)
	}()

	log.Info().Msg("admin and survey bots are running")
	wg.Wait()
	log.Info().Msg("bots stopped")
}

func mustEnv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		log.Fatal().Msgf("%s environment variable not set", name)
	}
	return value
}
