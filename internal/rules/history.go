package rules

// record appends a summary of one pass to the history ring.
func (e *Engine) record(result *ApplyResult, final float64, evaluated int, err error) {
	entry := HistoryEntry{
		Timestamp:      e.now(),
		OriginalPrice:  result.OriginalPrice,
		FinalPrice:     final,
		AppliedRules:   result.RuleIDs(),
		EvaluatedRules: evaluated,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	e.history[e.next] = entry
	e.next = (e.next + 1) % len(e.history)
	if e.next == 0 {
		e.full = true
	}
}

// GetExecutionHistory returns the recorded passes, oldest first.
func (e *Engine) GetExecutionHistory() []HistoryEntry {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	if !e.full {
		return append([]HistoryEntry(nil), e.history[:e.next]...)
	}
	out := make([]HistoryEntry, 0, len(e.history))
	out = append(out, e.history[e.next:]...)
	return append(out, e.history[:e.next]...)
}

// ClearHistory empties the execution history.
func (e *Engine) ClearHistory() {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	for i := range e.history {
		e.history[i] = HistoryEntry{}
	}
	e.next, e.full = 0, false
}

// Statistics summarizes the registry and the execution history.
func (e *Engine) Statistics() Statistics {
	now := e.now()
	e.mu.RLock()
	stats := Statistics{
		TotalRules:   len(e.rules),
		RulesByType:  make(map[RuleType]int),
		HandlerCount: len(e.handlers),
	}
	for _, r := range e.rules {
		stats.RulesByType[r.Type]++
		if r.IsEnabled() {
			stats.EnabledRules++
			if r.ActiveAt(now) {
				stats.ActiveRules++
			}
		}
	}
	e.mu.RUnlock()

	history := e.GetExecutionHistory()
	stats.HistorySize = len(history)
	for _, h := range history {
		stats.TotalApplied += len(h.AppliedRules)
	}
	return stats
}
