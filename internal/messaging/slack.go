// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package messaging implements the channel messengers: Slack for real runs
// and Console for dry runs.
package messaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/pkg/types"
)

// conversationsPageSize is the conversations.list page size.
const conversationsPageSize = 200

// Slack posts through the Slack Web API.
type Slack struct {
	api    *slack.Client
	teamID string
}

// NewSlack builds a Slack messenger from configuration.
func NewSlack(cfg types.SlackConfig) (*Slack, error) {
	if cfg.Token == "" {
		return nil, errors.New("slack: bot token is not configured")
	}
	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(strings.TrimSuffix(cfg.APIURL, "/")+"/"))
	}
	return &Slack{api: slack.New(cfg.Token, opts...), teamID: cfg.TeamID}, nil
}

// ResolveChannel pages through conversations.list until a channel named
// name is found. A leading '#' is ignored.
func (s *Slack) ResolveChannel(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(name, "#")
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           conversationsPageSize,
		Types:           []string{"public_channel", "private_channel"},
		TeamID:          s.teamID,
	}
	for {
		channels, cursor, err := s.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", &failure.ChannelResolutionError{Channel: name, Err: err}
		}
		for _, ch := range channels {
			if ch.Name == name {
				return ch.ID, nil
			}
		}
		if cursor == "" {
			return "", &failure.ChannelResolutionError{Channel: name}
		}
		params.Cursor = cursor
	}
}

// Post sends a top-level message and returns its timestamp.
func (s *Slack) Post(ctx context.Context, channelID, text string) (string, error) {
	_, ts, err := s.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("chat.postMessage: %w", err)
	}
	return ts, nil
}

// PostReply sends text into the thread started at thread.
func (s *Slack) PostReply(ctx context.Context, channelID, thread, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(thread),
	)
	if err != nil {
		return fmt.Errorf("chat.postMessage (reply): %w", err)
	}
	return nil
}

// Attach uploads content into the thread with files.uploadV2.
func (s *Slack) Attach(ctx context.Context, channelID, thread, filename, title string, content []byte) error {
	_, err := s.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Reader:          bytes.NewReader(content),
		FileSize:        len(content),
		Filename:        filename,
		Title:           title,
		Channel:         channelID,
		ThreadTimestamp: thread,
	})
	if err != nil {
		return fmt.Errorf("files.uploadV2: %w", err)
	}
	return nil
}
