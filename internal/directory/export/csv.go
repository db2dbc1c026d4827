// Package export renders the displayed page of a session as CSV or XLSX.
package export

import (
	"strconv"
	"strings"

	"github.com/gartstein/directory/internal/directory/models"
)

// Header is the column order shared by both formats.
var Header = []string{"ID", "Company", "Industry", "Location", "Employees", "Revenue", "Founded"}

// CSV renders the header followed by one line per company. Every value is
// wrapped in double quotes with inner quotes doubled, and lines are joined
// with "\n" without a trailing newline.
func CSV(companies []models.Company) string {
	lines := make([]string, 0, len(companies)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, c := range companies {
		fields := record(c)
		for i, f := range fields {
			fields[i] = quote(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

func record(c models.Company) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.Name,
		c.Industry,
		c.Location,
		strconv.Itoa(c.Employees),
		strconv.FormatInt(c.Revenue, 10),
		strconv.Itoa(c.Founded),
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
