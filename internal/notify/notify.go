// Package notify turns a mission view into a textual digest and delivers it
// to configured per-guild channels. Deliveries are independent: one dead or
// inaccessible channel never blocks the rest.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stormwatch/internal/worldinfo"
)

// Discord caps messages at 2000 characters; digests are split below that.
const maxMessageLen = 1900

// Destination is one configured notification target.
type Destination struct {
	GuildID   string
	ChannelID string
}

// Poster delivers a message to a channel. Implemented by the discordgo
// poster in production and by fakes in tests.
type Poster interface {
	Post(ctx context.Context, channelID, content string) error
}

// Notifier delivers digests.
type Notifier struct {
	poster Poster
	log    *zap.Logger
}

// New builds a notifier.
func New(poster Poster, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{poster: poster, log: log}
}

// Notify formats missions into a digest and posts it to every destination.
// Per-destination failures are logged and swallowed. An empty view is a
// no-op.
func (n *Notifier) Notify(ctx context.Context, dests []Destination, missions []worldinfo.Mission) {
	if len(missions) == 0 || len(dests) == 0 {
		return
	}

	chunks := splitDigest(Digest(missions))
	delivered := 0
	for _, d := range dests {
		failed := false
		for _, chunk := range chunks {
			if err := n.poster.Post(ctx, d.ChannelID, chunk); err != nil {
				n.log.Warn("digest delivery failed",
					zap.String("guild", d.GuildID),
					zap.String("channel", d.ChannelID),
					zap.Error(err))
				failed = true
				break
			}
		}
		if !failed {
			delivered++
		}
	}
	if delivered > 0 {
		n.log.Info("digest delivered",
			zap.Int("missions", len(missions)),
			zap.Int("destinations", delivered))
	}
}

// Digest renders missions as a plain-text summary, one block per mission.
func Digest(missions []worldinfo.Mission) string {
	var b strings.Builder
	b.WriteString("**Today's mission alerts**\n")
	for _, m := range missions {
		fmt.Fprintf(&b, "\n⚡ %d - %s (%s, %s)\n", m.PowerLevel, m.MissionType, m.Biome, m.Area)
		for _, r := range m.Rewards {
			fmt.Fprintf(&b, "  %s\n", rewardLine(r))
		}
	}
	return b.String()
}

func rewardLine(r worldinfo.Reward) string {
	tag := "repeatable"
	if !r.Repeatable {
		tag = "alert bonus"
	}
	return fmt.Sprintf("%dx %s (%s)", r.Amount, r.Name, tag)
}

// splitDigest breaks a digest on block boundaries so each chunk fits a
// single message. A single block longer than the limit is split on line
// boundaries so no chunk can exceed the platform message cap.
func splitDigest(digest string) []string {
	if len(digest) <= maxMessageLen {
		return []string{digest}
	}

	blocks := strings.Split(digest, "\n\n")
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	for _, block := range blocks {
		if len(block) > maxMessageLen {
			flush()
			chunks = append(chunks, splitBlock(block)...)
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(block)+2 > maxMessageLen {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(block)
	}
	flush()
	return chunks
}

// splitBlock cuts an oversized block at the last line break inside the
// limit, falling back to a hard cut for a single overlong line.
func splitBlock(block string) []string {
	var out []string
	for len(block) > maxMessageLen {
		cut := strings.LastIndexByte(block[:maxMessageLen], '\n')
		if cut <= 0 {
			cut = maxMessageLen
			out = append(out, block[:cut])
			block = block[cut:]
			continue
		}
		out = append(out, block[:cut])
		block = block[cut+1:]
	}
	if block != "" {
		out = append(out, block)
	}
	return out
}
