// Command clearer plays a Grovewalk session over the REST API, walking to
// the nearest reachable tree and chopping until nothing reachable stands.
// It needs a server running without --realtime, since walking and advancing
// only work on paused sessions.
package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/service"
)

// maxSwings bounds the attempts on one tree before it is skipped
const maxSwings = 12

// Report summarizes one clearing run
type Report struct {
	Felled    int
	Chops     int
	Steps     int
	Requests  int
	Skipped   int
	Remaining int
}

// Clearer walks and chops through one session
type Clearer struct {
	client     *Client
	maxActions int
	delay      time.Duration
	verbose    bool
}

// Run clears the session the client is bound to
func (c *Clearer) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	snap, err := c.client.State(ctx)
	if err != nil {
		return nil, err
	}
	report.Requests++

	strategy := NewClearingStrategy(snap)
	log.Printf("📊 Clearing: %dx%d grid, %d standing trees", snap.GridSize, snap.GridSize, strategy.Standing())

	for report.Requests < c.maxActions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		target, ok := strategy.NextTarget(snap.Player.Tile)
		if !ok {
			break
		}
		if c.verbose {
			log.Printf("🎯 Tree at (%d,%d), %d steps away", target.Tree.X, target.Tree.Y, len(target.Route))
		}

		arrived := true
		for start := 0; start < len(target.Route); start += service.MaxBulkSteps {
			if report.Requests >= c.maxActions {
				arrived = false
				break
			}
			chunk := target.Route[start:min(start+service.MaxBulkSteps, len(target.Route))]
			result, err := c.client.Walk(ctx, chunk)
			if err != nil {
				return report, err
			}
			report.Requests++
			report.Steps += result.StepsTaken
			snap = result.Snapshot
			if result.StepsTaken < len(chunk) {
				arrived = false
				break
			}
			c.pause()
		}
		strategy.Update(snap)
		if !arrived {
			// The map changed under the route; plan again from here
			continue
		}

		felled, last, err := c.chop(ctx, strategy, target, report)
		if err != nil {
			return report, err
		}
		if last != nil {
			snap = last
		}
		if felled {
			report.Felled++
			log.Printf("🪓 Felled tree at (%d,%d)", target.Tree.X, target.Tree.Y)
		} else if report.Requests < c.maxActions {
			strategy.Skip(target.Tree)
			report.Skipped++
			log.Printf("⚠️  Giving up on tree at (%d,%d)", target.Tree.X, target.Tree.Y)
		}
	}

	report.Remaining = strategy.Standing()
	return report, nil
}

// chop swings at target until the tree is down, advancing past every
// cooldown. It returns the latest snapshot seen, nil when none was fetched.
func (c *Clearer) chop(ctx context.Context, strategy *ClearingStrategy, target Target, report *Report) (bool, *engine.Snapshot, error) {
	var snap *engine.Snapshot
	for swing := 0; swing < maxSwings && strategy.IsTree(target.Tree); swing++ {
		if report.Requests >= c.maxActions {
			return false, snap, nil
		}

		result, err := c.client.Walk(ctx, []engine.Direction{target.Face})
		if err != nil {
			return false, snap, err
		}
		report.Requests++
		snap = result.Snapshot
		strategy.Update(result.Snapshot)

		if len(result.Resolutions) > 0 && result.Resolutions[0].Outcome == engine.OutcomeChop {
			report.Chops++
		}

		if cooldown := result.Snapshot.CooldownMS; cooldown > 0 && strategy.IsTree(target.Tree) && report.Requests < c.maxActions {
			advanced, err := c.client.Advance(ctx, int(cooldown)+1)
			if err != nil {
				return false, snap, err
			}
			report.Requests++
			snap = advanced.Snapshot
			strategy.Update(advanced.Snapshot)
		}
		c.pause()
	}
	return !strategy.IsTree(target.Tree), snap, nil
}

func (c *Clearer) pause() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "clearer",
		Usage: "clear a Grovewalk session of every reachable tree",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "World config id for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "Where the session ID is remembered between runs"},
			&cli.BoolFlag{Name: "reset", Usage: "Draw a fresh world before clearing"},
			&cli.IntFlag{Name: "max-actions", Value: 5000, Usage: "Maximum API requests"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between actions in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to game server at %s", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	if err := bindSession(ctx, client, cmd.String("continue"), cmd.String("config"), cmd.String("session-file")); err != nil {
		return err
	}

	if cmd.Bool("reset") {
		log.Printf("🔄 Resetting world...")
		if _, err := client.Reset(ctx); err != nil {
			return err
		}
	}

	clearer := &Clearer{
		client:     client,
		maxActions: cmd.Int("max-actions"),
		delay:      time.Duration(cmd.Int("delay")) * time.Millisecond,
		verbose:    cmd.Bool("v"),
	}

	report, err := clearer.Run(ctx)
	if report != nil {
		log.Printf("Felled %d trees with %d chops and %d steps (%d requests)",
			report.Felled, report.Chops, report.Steps, report.Requests)
		if report.Remaining > 0 {
			log.Printf("%d trees still standing, %d skipped", report.Remaining, report.Skipped)
		} else {
			log.Printf("🎉 Every tree is down")
		}
	}
	log.Printf("Session: %s", client.SessionID())
	return err
}

// bindSession resumes the requested or remembered session, falling back to
// a new one
func bindSession(ctx context.Context, client *Client, resume, configID, sessionFile string) error {
	if resume == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resume = string(bytes.TrimSpace(data))
		}
	}

	if resume != "" {
		client.Use(resume)
		_, err := client.State(ctx)
		if err == nil {
			log.Printf("🔄 Resuming session: %s", resume)
			return nil
		}
		log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
	}

	info, err := client.CreateSession(ctx, configID)
	if err != nil {
		return err
	}
	log.Printf("✨ Session created: %s (%s)", info.ID, info.ConfigName)

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}
	return nil
}
