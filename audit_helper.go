package main

import "envkey/internal/auditlog"

// auditLogHandle wraps *auditlog.Log so call sites don't need to nil-check
// every time: record is a no-op when the log could not be opened.
type auditLogHandle struct {
	log *auditlog.Log
}

func openAuditLogFile(path string, console bool) (*auditlog.Log, error) {
	return auditlog.Open(path, console)
}

func (h *auditLogHandle) record(op, actor, env, key, detail string) {
	if h == nil || h.log == nil {
		return
	}
	h.log.Record(auditlog.Event{Op: op, Actor: actor, Env: env, Key: key, Detail: detail})
}

func (h *auditLogHandle) close() {
	if h == nil || h.log == nil {
		return
	}
	_ = h.log.Close()
}
