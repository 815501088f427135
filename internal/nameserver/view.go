package nameserver

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/arvindsh/dfscore/internal/cli/output"
	"github.com/arvindsh/dfscore/internal/cli/timeutil"
)

// ViewFlags selects how much detail View renders, mirroring the
// operator command vocabulary's `-a`/`-l` flags.
type ViewFlags struct {
	All     bool // include files the requesting user has no access to
	Details bool // render owner, size, and mtime columns
}

// View renders a formatted listing of filenames (with owner, word and
// character counts, and modification time when Details is set), using
// tablewriter the same way the CLI's output package renders
// tables, except the rendering happens server-side into the RESPONSE
// data blob.
func (s *Store) View(requester string, flags ViewFlags) string {
	records := s.All()
	sort.Slice(records, func(i, j int) bool { return records[i].Filename < records[j].Filename })

	var buf bytes.Buffer
	if !flags.Details {
		data := output.NewTableData("")
		for _, r := range records {
			if !flags.All && r.RightsFor(requester) == 0 && r.Owner != requester {
				continue
			}
			data.AddRow("--> " + r.Filename)
		}
		_ = output.PrintTable(&buf, data)
		return buf.String()
	}

	data := output.NewTableData("FILE", "OWNER", "WORDS", "CHARS", "MODIFIED")
	for _, r := range records {
		if !flags.All && r.RightsFor(requester) == 0 && r.Owner != requester {
			continue
		}
		data.AddRow(
			r.Filename,
			r.Owner,
			strconv.Itoa(int(r.WordCount)),
			strconv.Itoa(int(r.CharCount)),
			r.LastModified.Local().Format(timeutil.LocalTimeFormat),
		)
	}
	_ = output.PrintTable(&buf, data)
	return buf.String()
}
