// Lambda entrypoint. Triggered by an EventBridge schedule or a direct invoke with
// {"topic": "...", "state": "...", "city": "...", "source": "..."}; configuration
// comes from the same NEWSBRIEF_* environment variables as the CLI.
package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"NewsBrief/internal/app"
	"NewsBrief/internal/config"
	"NewsBrief/internal/handler"
	"NewsBrief/internal/logging"
)

// Event is the invocation payload. Empty fields fall back to configuration.
type Event struct {
	Topic  string `json:"topic"`
	State  string `json:"state"`
	City   string `json:"city"`
	Source string `json:"source"`
	Limit  int    `json:"limit"`
	Days   int    `json:"days"`
}

// Response is the Lambda result.
type Response struct {
	StatusCode int                    `json:"statusCode"`
	Message    string                 `json:"message"`
	Brief      *handler.BriefResponse `json:"brief,omitempty"`
}

// Handler builds the application from the environment and runs one brief.
func Handler(ctx context.Context, event Event) (Response, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return Response{StatusCode: 400, Message: err.Error()}, err
	}
	return handle(ctx, application, event, logger.With("component", "lambda"))
}

func handle(ctx context.Context, runner handler.BriefRunner, event Event, logger *slog.Logger) (Response, error) {
	brief, err := runner.Run(ctx, app.QueryParams{
		Topic:  event.Topic,
		State:  event.State,
		City:   event.City,
		Source: event.Source,
		Limit:  event.Limit,
		Days:   event.Days,
	})
	res := handler.ToBriefResponse(brief)
	if err != nil {
		logger.Error("brief failed", "run_id", brief.RunID, "error", err)
		return Response{StatusCode: 500, Message: err.Error(), Brief: &res}, err
	}

	msg := "brief generated"
	if brief.NoContent {
		msg = "no recent content"
	}
	return Response{StatusCode: 200, Message: msg, Brief: &res}, nil
}

func main() {
	lambda.Start(Handler)
}
