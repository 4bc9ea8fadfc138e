// Package agent is an interactive coach that answers questions about one
// analysis report, backed by the Gemini API.
package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"

	trader "github.com/thuva4/am-i-bad-trader"
)

// DefaultModel is the Gemini model the coach talks to.
const DefaultModel = "gemini-2.5-flash"

const systemPrompt = `You are a calm, factual trading coach. You are given a
complete timing analysis of the user's transaction history as JSON. Answer
questions about it, ground every claim in the report's numbers, and never
invent trades or prices that are not in it. You give context on behavioral
patterns, not financial advice.`

// Coach is a chat session bound to one report.
type Coach struct {
	w         io.Writer
	r         *bufio.Reader
	ModelName string
	report    *trader.Report
	chat      *genai.Chat
}

// New creates a Coach writing to w and reading the user from r.
func New(w io.Writer, r io.Reader, report *trader.Report) *Coach {
	return &Coach{
		w:         w,
		r:         bufio.NewReader(r),
		ModelName: DefaultModel,
		report:    report,
	}
}

// Start opens the chat and feeds it the report.
func (c *Coach) Start(ctx context.Context, client *genai.Client) error {
	raw, err := json.Marshal(c.report)
	if err != nil {
		return fmt.Errorf("cannot serialize report for the coach: %w", err)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
				{Text: "The report:\n" + string(raw)},
			},
		},
	}
	chat, err := client.Chats.Create(ctx, c.ModelName, config, nil)
	if err != nil {
		return err
	}
	c.chat = chat
	return nil
}

// Ask sends one question and returns the coach's answer.
func (c *Coach) Ask(ctx context.Context, question string) (string, error) {
	resp, err := c.chat.Send(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from the coach")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

const prompt = "coach> "

// Run starts the interactive REPL session. Initial prompts, if any, are
// answered before reading from the user.
func (c *Coach) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if c.chat == nil {
		if err := c.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(c.w, "Ask about your trading history. Type 'bye' to exit.")
	for {
		fmt.Fprint(c.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(c.w, input)
		} else {
			var err error
			input, err = c.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}
		answer, err := c.Ask(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.w, answer)
	}
}
