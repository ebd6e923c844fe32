package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	got := Normalize("a   b\t\tc")
	assert.Equal(t, "a b c", got)
}

func TestNormalize_DropsEmptyLines(t *testing.T) {
	got := Normalize("first\n\n\n   \nsecond")
	assert.Equal(t, "first\nsecond", got)
}

func TestNormalize_DropsPageFurniture(t *testing.T) {
	in := strings.Join([]string{
		"real content",
		"3/12",
		"12/1/23, 4:05 PM",
		"https://myscore.cibil.com/CreditView/report",
		"Score Report | Cibil Dashboard",
		"more content",
	}, "\n")

	assert.Equal(t, "real content\nmore content", Normalize(in))
}

func TestNormalize_IsolatesSectionMarkers(t *testing.T) {
	got := Normalize("trailing text ADDRESS DETAILS leading text")
	assert.Equal(t, "trailing text \nADDRESS DETAILS\n leading text", got)
}

func TestNormalize_PageBreakOwnLine(t *testing.T) {
	got := Normalize("page one" + PageBreak + "page two")
	assert.Equal(t, "page one\n"+PageBreak+"\npage two", got)
}

func TestNormalize_PreservesLineOrder(t *testing.T) {
	in := "beta\nalpha\nbeta"
	assert.Equal(t, "beta\nalpha\nbeta", Normalize(in))
}

func TestIsPageNumberLine(t *testing.T) {
	assert.True(t, IsPageNumberLine("3/12"))
	assert.True(t, IsPageNumberLine(" 10/12 "))
	assert.False(t, IsPageNumberLine("15/01/2023"))
	assert.False(t, IsPageNumberLine("3/12 extra"))
}
