// Package stall normalizes raw PC-sampling stall-reason identifiers into
// canonical stall-kind tags, and loads the PC-sampling report itself.
package stall

// Unknown is the sentinel returned by Normalize for an unrecognized raw
// stall-reason identifier.
const Unknown = "STALL UNKNOWN"

// canonicalByRaw maps each of the 36 raw stall-counter identifiers (the
// "issued" and "not-issued" half of each of the 18 underlying reasons) onto
// its canonical tag (§4.1).
var canonicalByRaw = map[string]string{
	"smsp__warp_issue_stalled_barrier_per_warp_active":             "stalled_barrier",
	"smsp__warp_issue_stalled_barrier_not_issued_per_warp_active":   "stalled_barrier",
	"smsp__warp_issue_stalled_branch_per_warp_active":               "stalled_branch",
	"smsp__warp_issue_stalled_branch_not_issued_per_warp_active":    "stalled_branch",
	"smsp__warp_issue_stalled_dispatch_per_warp_active":             "stalled_dispatch",
	"smsp__warp_issue_stalled_dispatch_not_issued_per_warp_active":  "stalled_dispatch",
	"smsp__warp_issue_stalled_drain_per_warp_active":                "stalled_drain",
	"smsp__warp_issue_stalled_drain_not_issued_per_warp_active":     "stalled_drain",
	"smsp__warp_issue_stalled_imc_miss_per_warp_active":             "stalled_imc_miss",
	"smsp__warp_issue_stalled_imc_miss_not_issued_per_warp_active":  "stalled_imc_miss",
	"smsp__warp_issue_stalled_lg_throttle_per_warp_active":          "stalled_lg_throttle",
	"smsp__warp_issue_stalled_lg_throttle_not_issued_per_warp_active": "stalled_lg_throttle",
	"smsp__warp_issue_stalled_long_scoreboard_per_warp_active":      "stalled_long_scoreboard",
	"smsp__warp_issue_stalled_long_scoreboard_not_issued_per_warp_active": "stalled_long_scoreboard",
	"smsp__warp_issue_stalled_math_pipe_throttle_per_warp_active":   "stalled_math_pipe_throttle",
	"smsp__warp_issue_stalled_math_pipe_throttle_not_issued_per_warp_active": "stalled_math_pipe_throttle",
	"smsp__warp_issue_stalled_membar_per_warp_active":               "stalled_membar",
	"smsp__warp_issue_stalled_membar_not_issued_per_warp_active":    "stalled_membar",
	"smsp__warp_issue_stalled_mio_throttle_per_warp_active":         "stalled_mio_throttle",
	"smsp__warp_issue_stalled_mio_throttle_not_issued_per_warp_active": "stalled_mio_throttle",
	"smsp__warp_issue_stalled_misc_per_warp_active":                 "stalled_misc",
	"smsp__warp_issue_stalled_misc_not_issued_per_warp_active":      "stalled_misc",
	"smsp__warp_issue_stalled_no_instructions_per_warp_active":      "stalled_no_instructions",
	"smsp__warp_issue_stalled_no_instructions_not_issued_per_warp_active": "stalled_no_instructions",
	"smsp__warp_issue_stalled_not_selected_per_warp_active":         "stalled_not_selected",
	"smsp__warp_issue_stalled_not_selected_not_issued_per_warp_active": "stalled_not_selected",
	"smsp__warp_issue_stalled_selected_per_warp_active":             "stalled_selected",
	"smsp__warp_issue_stalled_selected_not_issued_per_warp_active":  "stalled_selected",
	"smsp__warp_issue_stalled_short_scoreboard_per_warp_active":     "stalled_short_scoreboard",
	"smsp__warp_issue_stalled_short_scoreboard_not_issued_per_warp_active": "stalled_short_scoreboard",
	"smsp__warp_issue_stalled_sleeping_per_warp_active":             "stalled_sleeping",
	"smsp__warp_issue_stalled_sleeping_not_issued_per_warp_active":  "stalled_sleeping",
	"smsp__warp_issue_stalled_tex_throttle_per_warp_active":         "stalled_tex_throttle",
	"smsp__warp_issue_stalled_tex_throttle_not_issued_per_warp_active": "stalled_tex_throttle",
	"smsp__warp_issue_stalled_wait_per_warp_active":                 "stalled_wait",
	"smsp__warp_issue_stalled_wait_not_issued_per_warp_active":      "stalled_wait",
}

// Normalize collapses a raw PC-sampling stall-reason identifier into its
// canonical tag. Normalizing an already-canonical tag returns it unchanged
// (every value in canonicalByRaw is itself a valid canonical tag, and is
// also present as its own key via canonicalTags below).
func Normalize(raw string) string {
	if tag, ok := canonicalByRaw[raw]; ok {
		return tag
	}
	if canonicalTags[raw] {
		return raw
	}
	return Unknown
}

var canonicalTags = map[string]bool{
	"stalled_barrier": true, "stalled_branch": true, "stalled_dispatch": true,
	"stalled_drain": true, "stalled_imc_miss": true, "stalled_lg_throttle": true,
	"stalled_long_scoreboard": true, "stalled_math_pipe_throttle": true,
	"stalled_membar": true, "stalled_mio_throttle": true, "stalled_misc": true,
	"stalled_no_instructions": true, "stalled_not_selected": true,
	"stalled_selected": true, "stalled_short_scoreboard": true,
	"stalled_sleeping": true, "stalled_tex_throttle": true, "stalled_wait": true,
}
