// Package ai defines the interfaces and configuration for the hosted AI
// services the pipeline depends on: text embedding and chat completion.
//
// Implementations live in subpackages (ai/openai for OpenAI-compatible
// APIs, ai/mock for tests). Consumers depend only on the interfaces.
package ai
