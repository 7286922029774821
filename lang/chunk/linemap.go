package chunk

// lineRun records that `count` consecutive bytecode bytes map to source
// line `line`, the same run-length scheme as the original line table: most
// instructions on the same source line compile to a contiguous run of
// bytes, so this stays far smaller than one int per byte.
type lineRun struct {
	line  int
	count int
}

// LineMap maps bytecode offsets to source line numbers via run-length
// encoding, appended to monotonically as the compiler emits bytes.
type LineMap struct {
	runs []lineRun
}

// Add records that the next byte written belongs to line. Consecutive calls
// with the same line extend the current run instead of starting a new one.
func (lm *LineMap) Add(line int) {
	if n := len(lm.runs); n > 0 && lm.runs[n-1].line == line {
		lm.runs[n-1].count++
		return
	}
	lm.runs = append(lm.runs, lineRun{line: line, count: 1})
}

// Get returns the source line for the instruction at the given bytecode
// offset, or -1 if offset is out of range.
func (lm *LineMap) Get(offset int) int {
	count := 0
	for _, run := range lm.runs {
		if offset >= count && offset < count+run.count {
			return run.line
		}
		count += run.count
	}
	return -1
}
