package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/rmullur/medist/internal/core"
	"github.com/rmullur/medist/internal/models"
)

// User-facing fallback replies. These are the only texts a caller ever sees
// for a failed turn; upstream error bodies stay in the logs.
const (
	replyConfigIssue      = "I'm sorry, there's a configuration issue with the AI service. Please contact the administrator."
	replyServiceError     = "I'm sorry, the AI service returned an error. Please try again later."
	replyNetworkError     = "I'm sorry, there was a network error when contacting the AI service. Please try again later."
	replyNoCandidate      = "I apologize, but I was unable to generate a response. Please try rephrasing your question."
	replyImageFailure     = "I'm sorry, there was an error analyzing the image. Please try again later."
	replyAnalyzedNoConfig = "I was able to analyze the image, but I couldn't provide detailed information due to a configuration issue."
	replyNoDetail         = "I couldn't retrieve detailed information at this time."
	replyNoDetailLong     = "I apologize, but I was unable to generate detailed information about this condition."
)

// Result is the terminal state of one turn. Reply is always a displayable,
// non-empty string, Err is set only for failed turns, and Degraded marks a
// partial success (classifier skipped, or summary without detail).
type Result struct {
	Reply          string
	Classification *models.ClassificationResult
	Degraded       bool
	Err            error
}

// Orchestrator runs one user turn through intake, optional classification,
// prompt construction and generation. It holds no state across turns.
type Orchestrator struct {
	llm        core.LLMProvider // nil when the API key is not configured
	classifier core.ImageClassifier
	logger     *zap.Logger
}

func New(llm core.LLMProvider, classifier core.ImageClassifier, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{llm: llm, classifier: classifier, logger: logger}
}

// TextTurn answers a plain chat message.
func (o *Orchestrator) TextTurn(ctx context.Context, message string) Result {
	if o.llm == nil {
		o.logger.Error("generative call skipped, missing config key", zap.String("key", "GEMINI_API_KEY"))
		return Result{Reply: replyConfigIssue, Err: core.ErrAPIKeyMissing}
	}

	reply, err := o.llm.Generate(ctx, TextPrompt(message))
	if err != nil {
		return Result{Reply: o.generateFailureReply(err), Err: err}
	}
	if reply == "" {
		return Result{Reply: replyNoCandidate}
	}
	return Result{Reply: reply}
}

// ImageTurn classifies the attachment and answers with a summary line plus a
// generated explanation. Classifier failure degrades to a text-only turn when
// the user also typed a message; with no message there is nothing to degrade
// to and the turn fails. Generation failure after a successful classification
// degrades to the summary line alone.
func (o *Orchestrator) ImageTurn(ctx context.Context, message, filename string, image io.Reader) Result {
	result, err := o.classifier.Classify(ctx, filename, image)
	if err != nil {
		o.logger.Error("image classification failed", zap.Error(err))
		if message == "" {
			return Result{Reply: replyImageFailure, Err: err}
		}
		r := o.TextTurn(ctx, message)
		r.Degraded = true
		return r
	}

	if o.llm == nil {
		o.logger.Error("generative call skipped, missing config key", zap.String("key", "GEMINI_API_KEY"))
		return Result{
			Classification: result,
			Reply:          replyAnalyzedNoConfig,
			Err:            core.ErrAPIKeyMissing,
		}
	}

	prompt, ok := ClassificationPrompt(result)
	if !ok {
		o.logger.Warn("unrecognized classifier category",
			zap.String("category", result.Category),
			zap.String("prediction", result.Prediction))
		prompt = fallbackClassificationPrompt(result)
	}

	detail, err := o.llm.Generate(ctx, prompt)
	if err != nil {
		o.logger.Error("generation failed after classification", zap.Error(err))
		return Result{
			Classification: result,
			Reply:          summaryLine(result) + "\n\n" + replyNoDetail,
			Degraded:       true,
		}
	}
	if detail == "" {
		detail = replyNoDetailLong
	}

	return Result{
		Classification: result,
		Reply:          summaryLine(result) + "\n\n" + detail,
	}
}

func summaryLine(result *models.ClassificationResult) string {
	return fmt.Sprintf("**Image Analysis Result:** %s (%s)", result.Prediction, result.Category)
}

// generateFailureReply keeps the user-facing text generic while the logged
// detail distinguishes an upstream service error from a transport failure.
func (o *Orchestrator) generateFailureReply(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		o.logger.Error("generative service returned an error",
			zap.Int("status", apiErr.Code), zap.Error(err))
		return replyServiceError
	}
	o.logger.Error("generative service unreachable", zap.Error(err))
	return replyNetworkError
}
