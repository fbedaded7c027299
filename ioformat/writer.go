package ioformat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tanteijms/light-chaser-HUAWEI2025/dispatch"
)

// Write emits the §6 output grammar for plan: for each of numUsers users in
// order, a line with the request count T_j followed by a line with T_j
// "send_time server_id npu_id batch" groups (blank if T_j = 0).
func Write(w io.Writer, plan dispatch.Plan, numUsers int) error {
	bw := bufio.NewWriter(w)

	for userID := 1; userID <= numUsers; userID++ {
		reqs := plan[userID]
		if _, err := fmt.Fprintln(bw, len(reqs)); err != nil {
			return fmt.Errorf("ioformat: writing request count for user %d: %w", userID, err)
		}

		for i, req := range reqs {
			if i > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return fmt.Errorf("ioformat: writing request separator for user %d: %w", userID, err)
				}
			}
			if _, err := fmt.Fprintf(bw, "%d %d %d %d", req.SendTime, req.ServerID, req.NPUID, req.Batch); err != nil {
				return fmt.Errorf("ioformat: writing request for user %d: %w", userID, err)
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return fmt.Errorf("ioformat: writing request line terminator for user %d: %w", userID, err)
		}
	}

	return bw.Flush()
}
