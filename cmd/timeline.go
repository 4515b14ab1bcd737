package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	"github.com/warpdl/warpscreen/cmd/common"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

const timeLayout = "2006-01-02 15:04"

func timeline(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "timeline", "load_config", err)
		return nil
	}
	st, err := cfg.openStore()
	if err != nil {
		common.PrintRuntimeErr(ctx, "timeline", "open_store", err)
		return nil
	}
	defer st.Close()

	doc, err := st.Load(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "timeline", "load", err)
		return nil
	}
	if len(doc.Items) == 0 {
		fmt.Println("no scheduled items")
		return nil
	}
	renderTimeline(os.Stdout, doc, time.Now())
	return nil
}

// window describes where now falls in one item's schedule window.
type window struct {
	total   int64
	current int64
	status  string
}

// itemWindow measures item's window in seconds. Items without an expiry
// have a unit window that is full once the item is eligible.
func itemWindow(it schedule.Item, selected bool, now time.Time) window {
	start := now
	if !it.ActivateAt.IsZero() {
		start = it.ActivateAt.Time()
	}
	status := "eligible"
	switch {
	case selected:
		status = "showing"
	case start.After(now):
		status = "starts " + start.Local().Format(timeLayout)
	}

	if it.ExpiresAt.IsZero() {
		w := window{total: 1, status: status + ", no expiry"}
		if !start.After(now) {
			w.current = 1
		}
		return w
	}
	end := it.ExpiresAt.Time()
	total := int64(end.Sub(start) / time.Second)
	if total < 1 {
		total = 1
	}
	elapsed := int64(now.Sub(start) / time.Second)
	switch {
	case elapsed < 0:
		elapsed = 0
	case elapsed > total:
		elapsed = total
	}
	return window{
		total:   total,
		current: elapsed,
		status:  status + ", expires " + end.Local().Format(timeLayout),
	}
}

// renderTimeline draws one bar per item showing how far now is through
// the item's window.
func renderTimeline(w io.Writer, doc *schedule.Document, now time.Time) {
	res := schedule.Select(doc.Items, now)
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	for i, it := range res.Items {
		win := itemWindow(it, i == res.Index, now)
		bar := common.InitWindowBar(p, it.URL, win.status, win.status, win.total)
		bar.SetCurrent(win.current)
		if win.current < win.total {
			bar.Abort(false)
		}
	}
	p.Wait()
}
