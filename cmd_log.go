package main

import (
	"envkey/internal/auditlog"
)

func runLog(args []string) {
	_ = args
	cfg := loadConfig()
	events, err := auditlog.ReadAll(cfg.Log.Path)
	if err != nil {
		fatal(err)
	}
	if len(events) == 0 {
		infof("no recorded operations")
		return
	}
	rows := make([][]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		rows = append(rows, []string{
			ev.Time.Format("2006-01-02T15:04:05Z07:00"),
			ev.Op, ev.Actor, ev.Env, ev.Key, ev.Detail,
		})
	}
	printAlignedTable([]string{"TIME", "OP", "ACTOR", "ENV", "KEY", "DETAIL"}, rows, 2)
}
