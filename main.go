package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alexdriaguine/drawly/internal/game"
	"github.com/alexdriaguine/drawly/internal/httpserver"
	"github.com/alexdriaguine/drawly/internal/session"
	"github.com/alexdriaguine/drawly/internal/store"
	"github.com/alexdriaguine/drawly/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	bank, err := words.New(os.Getenv("WORDS_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", bank.Len()).Msg("word list loaded")

	cfg := game.DefaultConfig()
	cfg.MaxRounds = getEnvInt("MAX_ROUNDS", cfg.MaxRounds)
	cfg.RoundTime = getEnvSeconds("ROUND_TIME_SECONDS", cfg.RoundTime)
	cfg.BreakTime = getEnvSeconds("BREAK_TIME_SECONDS", cfg.BreakTime)
	cfg.ChooseTime = getEnvSeconds("CHOOSE_TIME_SECONDS", cfg.ChooseTime)

	reg := httpserver.NewRegistry()
	sched := session.NewScheduler()
	defer sched.Shutdown()
	coord := session.NewCoordinator(store.NewStore(), bank, sched, reg, cfg)
	srv := httpserver.New(coord, reg)

	port := getEnv("PORT", "4000")
	log.Info().Str("port", port).Msg("starting drawly server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvSeconds(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
