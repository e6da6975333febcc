//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tidwall/gjson"
)

const (
	// Largest range one invocation will crunch.
	maxLambdaRange  = 1 << 16
	reportCacheSize = 1024
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type searchResult struct {
	First  string       `json:"first"`
	Last   string       `json:"last"`
	Best   []SeedResult `json:"best"`
	Worst  SeedResult   `json:"worst"`
	TimeMs int64        `json:"timeMs"`
}

var (
	initOnce sync.Once
	service  *reportService
	initErr  error
	cfg      Config
)

func setup() {
	cfg, service, initErr = newServiceFromEnv(reportCacheSize)
	if initErr == nil {
		newLogger(os.Stderr, cfg.Verbose).Info("chunk data loaded", "path", cfg.ChunkDataPath, "chunks", service.gen.catalog.NumChunks())
	}
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	initOnce.Do(setup)
	if initErr != nil {
		return errResp(500, initErr.Error())
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}
	if !gjson.Valid(body) {
		return errResp(400, "invalid JSON")
	}

	if seedArg := gjson.Get(body, "seed"); seedArg.Exists() {
		seed, err := parseSeed(seedArg.String())
		if err != nil || seed > 0xffffffff {
			return errResp(400, fmt.Sprintf("invalid seed %q", seedArg.String()))
		}
		rep, err := service.Report(uint32(seed))
		if err != nil {
			return errResp(422, err.Error())
		}
		return okResp(rep)
	}

	firstArg, lastArg := gjson.Get(body, "first"), gjson.Get(body, "last")
	if !firstArg.Exists() || !lastArg.Exists() {
		return errResp(400, "missing seed or first/last")
	}
	first, err := parseSeed(firstArg.String())
	if err != nil {
		return errResp(400, err.Error())
	}
	last, err := parseSeed(lastArg.String())
	if err != nil {
		return errResp(400, err.Error())
	}
	if last <= first || last-first > maxLambdaRange {
		return errResp(400, fmt.Sprintf("range must hold 1..%d seeds", maxLambdaRange))
	}

	s := NewSearcher(service, cfg, newLogger(os.Stderr, cfg.Verbose), io.Discard)
	start := s.now()
	board, err := s.Run(ctx, first, last)
	if err != nil {
		return errResp(422, err.Error())
	}
	worst, _ := board.Worst()
	return okResp(searchResult{
		First:  formatSeed(uint32(first)),
		Last:   formatSeed(uint32(last - 1)),
		Best:   board.Best(),
		Worst:  worst,
		TimeMs: s.now().Sub(start).Milliseconds(),
	})
}

func okResp(v any) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(v)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(body)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
