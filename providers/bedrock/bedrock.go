// Package bedrock implements provider.Provider on AWS Bedrock's
// ConverseStream API.
package bedrock

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"whispr/core/provider"
)

// converser is the subset of bedrockruntime.Client used for completions.
// Defined as an interface for testability.
type converser interface {
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

// Bedrock implements Provider by streaming a Converse call and collecting
// the text deltas into one reply.
type Bedrock struct {
	runtime converser
	region  string
	log     *zap.Logger
}

// NewBedrock creates a Bedrock provider configured for the given AWS region.
// If profile is non-empty, it is used to select a named AWS credentials profile.
func NewBedrock(ctx context.Context, region, profile string, logger *zap.Logger) (*Bedrock, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return newWithClient(bedrockruntime.NewFromConfig(awsCfg), region, logger), nil
}

func newWithClient(c converser, region string, logger *zap.Logger) *Bedrock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bedrock{runtime: c, region: region, log: logger.Named("bedrock")}
}

// Complete sends one prompt to req.Model and returns the full reply text.
func (b *Bedrock) Complete(ctx context.Context, req provider.Request) (string, error) {
	input, err := buildConverseStreamInput(req)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	out, err := b.runtime.ConverseStream(ctx, input)
	if err != nil {
		return "", classifyErr(err)
	}

	stream := out.GetStream()
	defer stream.Close()

	reply, err := collectText(stream)
	if err != nil {
		return "", err
	}
	b.log.Debug("converse finished",
		zap.String("model", req.Model),
		zap.String("stop_reason", reply.stopReason),
		zap.Int("input_tokens", reply.inputTokens),
		zap.Int("output_tokens", reply.outputTokens))
	return reply.text, nil
}

// classifyErr wraps AWS API errors into provider-level sentinels.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailableException", "ModelNotReadyException", "InternalServerException":
			return fmt.Errorf("%w: %s", provider.ErrOverloaded, apiErr.ErrorMessage())
		case "AccessDeniedException":
			return fmt.Errorf("%w: %s", provider.ErrPermissionDenied, apiErr.ErrorMessage())
		case "UnrecognizedClientException", "ExpiredTokenException", "InvalidSignatureException":
			return fmt.Errorf("%w: %s", provider.ErrInvalidCredential, apiErr.ErrorMessage())
		case "ServiceQuotaExceededException":
			return fmt.Errorf("%w: %s", provider.ErrQuotaExceeded, apiErr.ErrorMessage())
		case "ValidationException", "ResourceNotFoundException", "ModelNotFoundException":
			return fmt.Errorf("bedrock %s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
		}
	}

	return fmt.Errorf("bedrock: %w", err)
}

// Compile-time check that Bedrock implements provider.Provider
var _ provider.Provider = (*Bedrock)(nil)
