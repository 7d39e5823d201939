package executor

import "github.com/cadenzr/turnpike/src/aisdk"

// systemContent is the resolved system configuration for one backend call.
type systemContent struct {
	prompt   string
	messages []*aisdk.Message
}

// resolveSystemContent picks the system representation for a call.
// Precedence, highest first: the per-call override prompt, then the
// configured system messages, then the default prompt. Missing
// configuration yields no system content; that is not an error.
func resolveSystemContent(defaultPrompt string, configured []*aisdk.Message, override string) systemContent {
	switch {
	case override != "":
		return systemContent{prompt: override}
	case len(configured) > 0:
		return systemContent{messages: configured}
	default:
		return systemContent{prompt: defaultPrompt}
	}
}

// assembleContext builds the outgoing message sequence from the
// conversation history and the resolved system content. The history is
// copied, never mutated.
func assembleContext(conv *aisdk.Conversation, sys systemContent) []*aisdk.Message {
	history := conv.Messages()
	out := make([]*aisdk.Message, 0, len(history)+len(sys.messages)+1)

	if sys.prompt != "" {
		out = append(out, &aisdk.Message{Role: aisdk.RoleSystem, Content: sys.prompt})
	}
	out = append(out, sys.messages...)
	out = append(out, history...)
	return out
}
