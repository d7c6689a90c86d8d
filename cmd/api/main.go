package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rehearsed/classroom/backend/internal/config"
	"github.com/rehearsed/classroom/backend/internal/handler"
	classroomhandler "github.com/rehearsed/classroom/backend/internal/handler/classroom"
	lessonhandler "github.com/rehearsed/classroom/backend/internal/handler/lesson"
	personahandler "github.com/rehearsed/classroom/backend/internal/handler/persona"
	personamodel "github.com/rehearsed/classroom/backend/internal/model/persona"
	speechmodel "github.com/rehearsed/classroom/backend/internal/model/speech"
	"github.com/rehearsed/classroom/backend/internal/service/ai"
	classroomsvc "github.com/rehearsed/classroom/backend/internal/service/classroom"
	"github.com/rehearsed/classroom/backend/internal/service/coaching"
	lessonsvc "github.com/rehearsed/classroom/backend/internal/service/lesson"
	speechsvc "github.com/rehearsed/classroom/backend/internal/service/speech"
	"github.com/rehearsed/classroom/backend/internal/service/transcript"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	personas := buildPersonaStore(cfg.Classroom.ProfilesDir)

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("[main] failed to initialize AI service: %v", err)
	}

	coordinator := classroomsvc.NewCoordinator(aiService, personas,
		classroomsvc.WithDefaultGrade(cfg.Classroom.DefaultGradeLevel),
		classroomsvc.WithPersonaTimeout(time.Duration(cfg.Classroom.PersonaTimeoutSeconds)*time.Second),
	)
	coach := coaching.NewStreamer(aiService)
	builder := lessonsvc.NewBuilder(aiService, personas)
	summarizer := lessonsvc.NewSummarizer(aiService)
	transcripts := transcript.NewService()

	var speechService *speechsvc.Service
	if cfg.Speech.Enabled {
		speechService = speechsvc.NewService(&speechmodel.SpeechConfig{
			AppID:       cfg.Speech.AppID,
			AccessToken: cfg.Speech.AccessToken,
			Cluster:     cfg.Speech.Cluster,
			BaseURL:     cfg.Speech.BaseURL,
			TTSVoice:    cfg.Speech.TTSVoice,
			TTSSpeed:    cfg.Speech.TTSSpeed,
			TTSVolume:   cfg.Speech.TTSVolume,
			Timeout:     cfg.Speech.Timeout,
		}, personas)
		log.Printf("[main] speech synthesis enabled, cluster=%s", cfg.Speech.Cluster)
	} else {
		log.Printf("[main] speech synthesis disabled, audio responses will carry text only")
	}

	router := handler.NewRouter(handler.Deps{
		Persona:   personahandler.New(personas),
		Lesson:    lessonhandler.New(builder, summarizer),
		Classroom: classroomhandler.New(coordinator, coach, speechService),
		WS:        classroomhandler.NewWSHandler(coordinator, coach, summarizer, transcripts),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown failed: %v", err)
	}
}

// buildPersonaStore loads YAML profiles when a directory is configured
// and falls back to the built-in roster otherwise.
func buildPersonaStore(profilesDir string) personamodel.Store {
	if profilesDir != "" {
		loaded, err := personamodel.LoadDir(profilesDir)
		if err != nil {
			log.Fatalf("[main] failed to load persona profiles: %v", err)
		}
		log.Printf("[main] loaded %d persona profiles from %s", len(loaded), profilesDir)
		return personamodel.NewMemoryStore(loaded)
	}
	return personamodel.NewMemoryStore(personamodel.Seed())
}
