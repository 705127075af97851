package main

import (
	"fmt"
	"os"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	_ "github.com/joho/godotenv/autoload"

	"github.com/teenytinyai/teenytiny-conformance/common/env"
	"github.com/teenytinyai/teenytiny-conformance/echoserver"
)

func main() {
	logger, err := glog.NewConsoleWithName("teenytiny-echo", glog.LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %+v\n", err)
		os.Exit(1)
	}

	addr := ":" + env.String("PORT", "8080")
	apiKey := env.String("TEENYTINY_API_KEY", "testkey")

	logger.Info("echo server listening", zap.String("addr", addr))
	if err := echoserver.New(apiKey).Run(addr); err != nil {
		logger.Error("echo server exited", zap.Error(err))
		os.Exit(1)
	}
}
