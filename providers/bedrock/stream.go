package bedrock

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// eventStream is the interface satisfied by bedrockruntime's ConverseStreamEventStream.
// Defined as an interface for testability.
type eventStream interface {
	Events() <-chan brtypes.ConverseStreamOutput
	Close() error
	Err() error
}

// streamReply is the text and metadata gathered from one stream.
type streamReply struct {
	text         string
	stopReason   string
	inputTokens  int
	outputTokens int
}

// collectText drains the stream, concatenating text deltas. Non-text blocks
// are ignored.
func collectText(stream eventStream) (streamReply, error) {
	var reply streamReply
	var b strings.Builder

	for event := range stream.Events() {
		switch v := event.(type) {
		case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
			if delta, ok := v.Value.Delta.(*brtypes.ContentBlockDeltaMemberText); ok {
				b.WriteString(delta.Value)
			}
		case *brtypes.ConverseStreamOutputMemberMessageStop:
			reply.stopReason = string(v.Value.StopReason)
		case *brtypes.ConverseStreamOutputMemberMetadata:
			if v.Value.Usage != nil {
				reply.inputTokens = int(aws.ToInt32(v.Value.Usage.InputTokens))
				reply.outputTokens = int(aws.ToInt32(v.Value.Usage.OutputTokens))
			}
		}
	}

	// Channel closed: stream finished or failed.
	if err := stream.Err(); err != nil {
		return streamReply{}, fmt.Errorf("bedrock stream: %w", classifyErr(err))
	}
	reply.text = b.String()
	return reply, nil
}
