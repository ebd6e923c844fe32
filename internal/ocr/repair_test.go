package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func repairLines(lines ...string) []string {
	return strings.Split(Repair(strings.Join(lines, "\n")), "\n")
}

func TestRepair_SplitsPrintHeader(t *testing.T) {
	got := repairLines("12/1/23, 4:05 PM Score Report | Cibil Dashboard")
	assert.Equal(t, []string{"12/1/23, 4:05 PM", "Score Report | Cibil Dashboard"}, got)
}

func TestRepair_SplitsURLFromPageNumber(t *testing.T) {
	got := repairLines("https://myscore.cibil.com/CreditView/report 3/12")
	assert.Equal(t, []string{"https://myscore.cibil.com/CreditView/report", "3/12"}, got)
}

func TestRepair_FoldsScoreIntoScale(t *testing.T) {
	got := repairLines("300 900", "756")
	assert.Equal(t, []string{"300 756 900"}, got)
}

func TestRepair_ScaleWithoutScoreLeftAlone(t *testing.T) {
	got := repairLines("300 900", "not a score")
	assert.Equal(t, []string{"300 900", "not a score"}, got)
}

func TestRepair_SplitsTrailingPageNumber(t *testing.T) {
	got := repairLines("Credit Card 3/12")
	assert.Equal(t, []string{"Credit Card", "3/12"}, got)
}

func TestRepair_PaymentStatusDpdCarriedToMonth(t *testing.T) {
	got := repairLines("PAYMENT STATUS 30", "Jan 2023", "Feb 2023")
	assert.Equal(t, []string{"PAYMENT STATUS", "Jan 2023 30", "Feb 2023"}, got,
		"the detached DPD attaches to the first month only")
}

func TestRepair_MultiMonthRowZippedWithBackfill(t *testing.T) {
	got := repairLines("Jan 2023 Feb 2023 Mar 2023", "0")
	assert.Equal(t, []string{"Jan 2023 0", "Feb 2023 N/A", "Mar 2023 N/A"}, got)
}

func TestRepair_MultiMonthRowZipped(t *testing.T) {
	got := repairLines("Jan 2023 Feb 2023", "0 30")
	assert.Equal(t, []string{"Jan 2023 0", "Feb 2023 30"}, got)
}

func TestRepair_SingleMonthMergedWithDpdLine(t *testing.T) {
	got := repairLines("Jan 2023", "STD")
	assert.Equal(t, []string{"Jan 2023 STD"}, got)
}

func TestRepair_MonthFollowedByMonthNotMerged(t *testing.T) {
	got := repairLines("Jan 2023", "Feb 2023")
	assert.Equal(t, []string{"Jan 2023", "Feb 2023"}, got)
}

func TestRepair_CollapsesRunsOfSpaces(t *testing.T) {
	got := repairLines("Member   Name\tHDFC")
	assert.Equal(t, []string{"Member Name HDFC"}, got)
}

func TestRepair_OrdinaryLinesUntouched(t *testing.T) {
	in := "CONSUMER CIR\nMember Name\nHDFC BANK"
	assert.Equal(t, in, Repair(in))
}
