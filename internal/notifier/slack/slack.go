package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/meeplemeet/meeplemeet/internal/metrics"
	"github.com/meeplemeet/meeplemeet/internal/notifier"
	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendMeetingNotification(meeting tracker.Meeting, dryRun bool) error {
	msg := s.formatMeetingNotification(meeting)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendResultNotification(record tracker.GameRecord, dryRun bool) error {
	msg := s.formatResultNotification(record)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(winners []stats.WinnerRow, dryRun bool) error {
	msg := s.formatLeaderboard(winners)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(winners []stats.WinnerRow) (any, error) {
	return s.formatLeaderboard(winners), nil
}

// formatMeetingNotification creates the Slack message for a newly scheduled meetup using Block Kit.
func (s *Notifier) formatMeetingNotification(meeting tracker.Meeting) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎲 New meetup scheduled! 🎲", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("When: %s\nWhere: %s", meeting.Date, meeting.Location)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if meeting.Description != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", meeting.Description, true, false), nil, nil))
	}

	if meeting.Host != nil && meeting.Host.Name != "" {
		hostText := fmt.Sprintf("🏠 %s is hosting!", meeting.Host.Name)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", hostText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification creates the Slack message for a finished game using Block Kit.
func (s *Notifier) formatResultNotification(record tracker.GameRecord) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎲 Game finished! 🎲", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s on %s", record.GameName, record.Date)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	var winners []string
	var scoreLines []string
	for _, result := range record.Results {
		name := result.ResolvedName
		if name == "" {
			name = result.PlayerName
		}
		if result.IsWinner {
			winners = append(winners, name)
		}
		scoreLines = append(scoreLines, fmt.Sprintf("• %s: %d", name, result.Score))
	}

	resultHeaderText := "Result: No winner this time."
	if len(winners) > 0 {
		resultHeaderText = fmt.Sprintf("Result: %s won! 🏆", strings.Join(winners, " & "))
	}
	var scoreFields []*slack.TextBlockObject
	if len(scoreLines) > 0 {
		scoreFields = append(scoreFields, slack.NewTextBlockObject("plain_text", strings.Join(scoreLines, "\n"), true, false))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultHeaderText, true, false), scoreFields, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the win leaderboard.
func (s *Notifier) formatLeaderboard(winners []stats.WinnerRow) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Win Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(winners) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some games!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, winner := range winners {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		winnerText := fmt.Sprintf("%d. %s %s\n> Win %%: %.1f%% (%d/%d)",
			rank,
			medal,
			winner.Name,
			winner.WinRate,
			winner.Wins,
			winner.Plays,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", winnerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
