package bedrock

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"whispr/core/provider"
)

const defaultMaxTokens = 4096

var (
	errNoModel  = errors.New("request has no model")
	errNoPrompt = errors.New("request has no prompt")
)

// buildConverseStreamInput maps a request to a single user message. The
// conversation history is already folded into req.Prompt.
func buildConverseStreamInput(req provider.Request) (*bedrockruntime.ConverseStreamInput, error) {
	if req.Model == "" {
		return nil, errNoModel
	}
	if req.Prompt == "" {
		return nil, errNoPrompt
	}

	input := &bedrockruntime.ConverseStreamInput{
		ModelId: aws.String(req.Model),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: req.Prompt}},
		}},
	}

	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	input.InferenceConfig = &brtypes.InferenceConfiguration{
		MaxTokens: aws.Int32(int32(maxTokens)),
	}

	return input, nil
}
