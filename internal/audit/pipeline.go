// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/notify"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/report"
)

// FieldSummary holds the counters of one field pass.
type FieldSummary struct {
	Field         string
	ItemsMatched  int
	IssuesFlagged int
	Duration      time.Duration
	Err           error
}

// RunSummary aggregates one full audit run.
type RunSummary struct {
	Fields        []FieldSummary
	IssuesFlagged int
	Posted        int
	Suppressed    int
	DryRunSkipped int
	Failed        int
	Duration      time.Duration
}

// FailedFieldPasses counts field passes that ended in a fetch or
// classification error.
func (s *RunSummary) FailedFieldPasses() int {
	n := 0
	for _, f := range s.Fields {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Pipeline runs the audit: one fetch-and-evaluate pass per required field in
// declared order, then one dedup-and-dispatch pass per flagged issue with the
// missing fields consolidated across passes. Consolidation means each issue
// receives at most one comment per run naming every missing field, which
// keeps the dedup anchor phrase meaningful.
type Pipeline struct {
	Client     github.Client
	Ref        github.ProjectRef
	Fields     []FieldSpec
	PageSize   int
	Dedup      notify.Deduplicator
	Dispatcher notify.Dispatcher
	Report     report.Writer // optional
	Logger     *slog.Logger
}

// Run executes the full audit. Errors local to one field pass or one issue
// are logged and recorded in the summary without aborting the run; Run itself
// returns an error only when every field pass failed, since at that point the
// run observed nothing.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	summary := &RunSummary{}
	findings := make(map[string]*IssueFindings)
	var lastPassErr error

	filters := Filters{ClosedOnly: true, EmptyValueOnly: true}

	for _, spec := range p.Fields {
		passStart := time.Now()
		fieldLog := logger.With("field", spec.Name)

		items, err := FetchAll(ctx, p.Client, p.Ref, spec.Query(), filters, p.PageSize)
		if err != nil {
			fieldLog.Error("field pass aborted", "error", err)
			summary.Fields = append(summary.Fields, FieldSummary{
				Field:    spec.Name,
				Duration: time.Since(passStart),
				Err:      err,
			})
			lastPassErr = err
			p.writeFieldSummary(logger, spec, 0, 0, err)
			continue
		}

		passFindings, err := Evaluate(items, spec)
		if err != nil {
			fieldLog.Error("field pass aborted", "error", err)
			summary.Fields = append(summary.Fields, FieldSummary{
				Field:        spec.Name,
				ItemsMatched: len(items),
				Duration:     time.Since(passStart),
				Err:          err,
			})
			lastPassErr = err
			p.writeFieldSummary(logger, spec, len(items), 0, err)
			continue
		}

		MergeFindings(findings, passFindings)
		summary.Fields = append(summary.Fields, FieldSummary{
			Field:         spec.Name,
			ItemsMatched:  len(items),
			IssuesFlagged: len(passFindings),
			Duration:      time.Since(passStart),
		})
		p.writeFieldSummary(logger, spec, len(items), len(passFindings), nil)

		if len(passFindings) == 0 {
			fieldLog.Info("no issues found")
		} else {
			fieldLog.Info("field pass complete",
				"items", len(items), "issues_flagged", len(passFindings))
		}
	}

	if len(p.Fields) > 0 && summary.FailedFieldPasses() == len(p.Fields) {
		summary.Duration = time.Since(start)
		return summary, fmt.Errorf("all %d field passes failed: %w", len(p.Fields), lastPassErr)
	}

	summary.IssuesFlagged = len(findings)
	p.dispatchAll(ctx, logger, findings, summary)
	summary.Duration = time.Since(start)

	return summary, nil
}

// dispatchAll walks the flagged issues in issue-number order and applies the
// dedup gate and the dispatcher to each. A failure on one issue never blocks
// the others.
func (p *Pipeline) dispatchAll(ctx context.Context, logger *slog.Logger, findings map[string]*IssueFindings, summary *RunSummary) {
	ordered := make([]*IssueFindings, 0, len(findings))
	for _, f := range findings {
		ordered = append(ordered, f)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Issue.Number < ordered[j].Issue.Number
	})

	for _, f := range ordered {
		issue := f.Issue
		missing := f.MissingFields(p.Fields)
		issueLog := logger.With("issue", issue.Number)

		notified, err := p.Dedup.AlreadyNotified(ctx, issue, notify.AnchorPhrase)
		if err != nil {
			// Without a trustworthy dedup answer, posting risks a duplicate;
			// skip the issue and let the next run retry.
			issueLog.Error("dedup check failed, skipping issue", "error", err)
			summary.Failed++
			p.writeIssueRecord(logger, issue, missing, notify.OutcomeFailed, err)
			continue
		}
		if notified {
			issueLog.Info("notification already exists, suppressed")
			summary.Suppressed++
			p.writeIssueRecord(logger, issue, missing, notify.OutcomeSuppressed, nil)
			continue
		}

		outcome, err := p.Dispatcher.Notify(ctx, issue, missing)
		if err != nil {
			issueLog.Error("notification failed, skipping issue", "error", err)
			summary.Failed++
			p.writeIssueRecord(logger, issue, missing, outcome, err)
			continue
		}

		switch outcome {
		case notify.OutcomePosted:
			summary.Posted++
			if markErr := p.Dedup.MarkNotified(ctx, issue, notify.AnchorPhrase); markErr != nil {
				// The comment is posted; a failed mark only risks one extra
				// dedup scan next run.
				issueLog.Warn("failed to record notification", "error", markErr)
			}
		case notify.OutcomeSuppressed:
			summary.Suppressed++
		case notify.OutcomeDryRun:
			summary.DryRunSkipped++
		}
		p.writeIssueRecord(logger, issue, missing, outcome, nil)
	}
}

func (p *Pipeline) writeFieldSummary(logger *slog.Logger, spec FieldSpec, items, flagged int, passErr error) {
	if p.Report == nil {
		return
	}
	rec := report.FieldSummaryRecord{
		Type:          report.RecordTypeFieldSummary,
		Time:          time.Now().UTC(),
		Project:       p.Ref.String(),
		Field:         spec.Name,
		ItemsMatched:  items,
		IssuesFlagged: flagged,
	}
	if passErr != nil {
		rec.Error = passErr.Error()
	}
	if err := p.Report.Write(rec); err != nil {
		logger.Warn("failed to write field summary record", "error", err)
	}
}

func (p *Pipeline) writeIssueRecord(logger *slog.Logger, issue *github.Issue, missing []string, outcome notify.Outcome, issueErr error) {
	if p.Report == nil {
		return
	}
	rec := report.IssueRecord{
		Type:          report.RecordTypeIssue,
		Time:          time.Now().UTC(),
		Project:       p.Ref.String(),
		IssueNumber:   issue.Number,
		IssueURL:      issue.URL,
		MissingFields: missing,
		Outcome:       string(outcome),
	}
	if issueErr != nil {
		rec.Error = issueErr.Error()
	}
	if err := p.Report.Write(rec); err != nil {
		logger.Warn("failed to write issue record", "error", err)
	}
}
