package report

import (
	"fmt"
	"io"
	"sort"

	ballot "github.com/jicksta/ballot-box"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"
)

// Standing is one row of the standings table.
type Standing struct {
	Rank int
	ballot.ProposalView
	Share float64
}

type StandingsReport struct {
	Proposals []ballot.ProposalView
}

func NewStandingsReport(proposals []ballot.ProposalView) *StandingsReport {
	return &StandingsReport{
		Proposals: proposals,
	}
}

// TotalVotes sums the votes of every proposal.
func (sr *StandingsReport) TotalVotes() float64 {
	return floats.Sum(sr.counts())
}

// Standings orders proposals by votes, highest first, breaking ties by id. Share is the fraction of all
// votes cast, or 0 when no votes have been cast.
func (sr *StandingsReport) Standings() []Standing {
	shares := sr.counts()
	if total := floats.Sum(shares); total > 0 {
		floats.Scale(1/total, shares)
	}

	standings := make([]Standing, 0, len(sr.Proposals))
	for i, proposal := range sr.Proposals {
		standings = append(standings, Standing{ProposalView: proposal, Share: shares[i]})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Votes == standings[j].Votes {
			return standings[i].ID < standings[j].ID
		}
		return standings[i].Votes > standings[j].Votes
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func (sr *StandingsReport) PrintStandingsTable(writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Rank", "ID", "Description", "Votes", "Share"})

	// Configure for Markdown table formatting
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)

	for _, standing := range sr.Standings() {
		table.Append([]string{
			fmt.Sprint(standing.Rank),
			fmt.Sprint(standing.ID),
			standing.Description,
			fmt.Sprint(standing.Votes),
			fmt.Sprintf("%.1f%%", standing.Share*100),
		})
	}

	table.Render()
}

func (sr *StandingsReport) counts() []float64 {
	counts := make([]float64, len(sr.Proposals))
	for i, proposal := range sr.Proposals {
		counts[i] = float64(proposal.Votes)
	}
	return counts
}
