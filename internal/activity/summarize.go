package activity

// Summarizer renders a one-line human detail string for one tool
// invocation's arguments.
type Summarizer func(args map[string]any) string

// summarizers maps tool names to their detail formatter. Tools without an
// entry yield an empty detail string; an unknown tool is never an error.
var summarizers = map[string]Summarizer{
	"read":  filePathSummary,
	"write": filePathSummary,
	"edit": func(args map[string]any) string {
		return "Datei: " + argString(args, "path")
	},
	"exec": func(args map[string]any) string {
		return "Command: " + cutRunes(stringArg(args, "command"), 50) + "..."
	},
	"web_fetch": func(args map[string]any) string {
		return "URL: " + argString(args, "url")
	},
	"message": func(args map[string]any) string {
		return argString(args, "action") + " → " + argString(args, "target", "channel")
	},
	"sessions_spawn": func(args map[string]any) string {
		task := cutRunes(stringArg(args, "task"), 50)
		if task == "" {
			task = "?"
		}
		return "Sub-Agent: " + task
	},
}

// RegisterSummarizer installs a detail formatter for a tool name,
// replacing any existing one.
func RegisterSummarizer(tool string, fn Summarizer) {
	summarizers[tool] = fn
}

// Summarize produces the detail string for a tool invocation. Nil arguments
// or an unrecognized tool produce an empty string.
func Summarize(tool string, args map[string]any) string {
	if args == nil {
		return ""
	}
	fn, ok := summarizers[tool]
	if !ok {
		return ""
	}
	return fn(args)
}

func filePathSummary(args map[string]any) string {
	return "Datei: " + argString(args, "path", "file_path")
}

// argString returns the first non-empty string value among keys, or "?".
func argString(args map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := args[key].(string); ok && s != "" {
			return s
		}
	}
	return "?"
}

// stringArg returns the string value under key, or "" when absent.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// cutRunes truncates s to at most n runes.
func cutRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
