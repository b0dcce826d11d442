package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var entries = []string{
	"Sprint planning ran long again, we cut the reporting epic to make room for the billing fixes.",
	"Quick sync with the infra team about the flaky staging deploys.",
	"Demoed the import pipeline to the stakeholders, feedback was mostly positive.",
	"Retro surfaced the same complaint about unclear ticket scoping.",
	"Paired with Dana on the migration script for most of the afternoon.",
	"Standup was short, everyone is heads down on the release.",
	"Decided to move the nightly batch jobs to run at 03:00 UTC.",
	"We agreed to freeze schema changes until the audit wraps up.",
	"Chose postgres over the document store for the new ledger service.",
	"Settled on trunk based development for the platform repos.",
	"Decided against adopting the new framework until it stabilizes.",
	"Learned that the load balancer retries idempotent requests twice by default.",
	"Reading up on write ahead logging, the checkpoint tradeoffs finally clicked.",
	"Discovered the cache invalidation bug was a timezone mismatch all along.",
	"The profiler showed most of the latency hiding in JSON marshaling.",
	"Turns out the vendor API rate limits per token, not per account.",
	"Morning run along the river, legs felt heavy but finished the loop.",
	"Skipped the gym, stretched at home instead.",
	"Third week of getting up at six, it is finally sticking.",
	"Meal prepped on Sunday so the week does not derail again.",
	"Coffee with Priya from the data team, she offered to review the schema.",
	"Caught up with Marcus about the conference talk proposal.",
	"Met the new platform lead, seems keen on paying down the deploy debt.",
	"The ledger service passed its first end to end test today.",
	"Import pipeline is down to four minutes for the full dataset.",
	"Wrote the design doc for the notification fanout, sent it for review.",
	"The search prototype returns sensible results on real data now.",
	"Cut the first release candidate and handed it to QA.",
	"Inbox zero for the first time this quarter.",
	"Blocked most of the day waiting on the security review.",
	"Spent the evening reading instead of doomscrolling, felt better for it.",
	"The garden tomatoes are finally ripening.",
	"Booked the train tickets for the October trip.",
	"Rewrote the onboarding doc so the next hire suffers less.",
	"Backups verified, the restore drill took eleven minutes.",
	"Flaky test turned out to be a real race, fixed the ordering.",
	"Budget review pushed to next week again.",
	"The workshop on incident response was worth the time.",
	"Refactored the config loader, the tests read much cleaner now.",
	"Long walk after dinner to clear my head before the release.",
	"Want to ship the facts extractor before the end of the month.",
	"Aiming to read one paper a week this quarter.",
	"Remember the vendor contract caps us at ten thousand calls a day.",
	"Deploy freeze starts Friday for the holiday weekend.",
	"Interview loop in the afternoon, strong candidate for the data role.",
	"The dashboard finally shows error budgets per service.",
	"Archived the stale branches, the repo feels lighter.",
	"Took notes on the postmortem, action items assigned by Tuesday.",
}

var headlines = []string{
	"Daily log",
	"Standup notes",
	"Evening review",
	"Scratchpad",
}

var seedFacts = map[string][]string{
	"decisions": {
		"moved nightly batch jobs to 03:00 UTC",
		"chose postgres for the ledger service",
		"froze schema changes until the audit wraps",
	},
	"preferences": {
		"prefers trunk based development",
		"likes design docs before implementation",
	},
	"goals": {
		"ship the facts extractor by end of month",
		"read one paper a week",
	},
	"constraints": {
		"vendor API capped at ten thousand calls a day",
	},
	"learnings": {
		"load balancer retries idempotent requests twice",
		"cache bug was a timezone mismatch",
	},
	"contacts": {
		"Priya on the data team reviews schemas",
		"Marcus is drafting a conference talk",
	},
	"habits": {
		"morning runs along the river",
	},
	"projects": {
		"ledger service passed end to end tests",
		"import pipeline runs in four minutes",
	},
}

var (
	workspaceDir = flag.String("dir", "./workspace", "target workspace directory")
	dayCount     = flag.Int("days", 30, "number of dated memory files to write")
	perDay       = flag.Int("lines", 4, "entries per memory file")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// noteFor assembles the markdown body for one dated memory file. Entries
// rotate deterministically so repeated seeding produces identical files.
func noteFor(day int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", headlines[day%len(headlines)])
	for j := 0; j < *perDay; j++ {
		fmt.Fprintf(&b, "%s\n", entries[(day**perDay+j)%len(entries)])
	}
	return b.String()
}

type factEntry struct {
	Content       string `json:"content"`
	DateExtracted string `json:"date_extracted"`
}

type factStore struct {
	LastUpdated string                 `json:"last_updated"`
	Facts       map[string][]factEntry `json:"facts"`
}

func writeFactStore(path string, now time.Time) error {
	store := factStore{
		LastUpdated: now.UTC().Format(time.RFC3339),
		Facts:       map[string][]factEntry{},
	}
	date := now.AddDate(0, 0, -3).Format("2006-01-02")
	for category, contents := range seedFacts {
		for _, content := range contents {
			store.Facts[category] = append(store.Facts[category], factEntry{
				Content:       content,
				DateExtracted: date,
			})
		}
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func main() {
	memoryDir := filepath.Join(*workspaceDir, "memory")
	if err := os.MkdirAll(memoryDir, 0o755); err != nil {
		panic(err)
	}

	now := time.Now()
	for day := 0; day < *dayCount; day++ {
		id := now.AddDate(0, 0, -day).Format("2006-01-02")
		path := filepath.Join(memoryDir, id+".md")
		if err := os.WriteFile(path, []byte(noteFor(day)), 0o644); err != nil {
			panic(err)
		}
	}

	overview := "# Memory workspace\n\nSeeded workspace for trying recall locally.\nDated notes live under memory/, extracted facts in long_term_memory.json.\n"
	if err := os.WriteFile(filepath.Join(memoryDir, "MEMORY.md"), []byte(overview), 0o644); err != nil {
		panic(err)
	}

	if err := writeFactStore(filepath.Join(*workspaceDir, "long_term_memory.json"), now); err != nil {
		panic(err)
	}

	slog.Info("seeded workspace", "dir", *workspaceDir, "notes", *dayCount, "facts", len(seedFacts))
}
