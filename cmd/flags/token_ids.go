package flags

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

type TokenIds struct {
	Value *[]int64
}

func NewTokenIds(tokens string) *TokenIds {
	tokensSlice := parse(tokens)

	return &TokenIds{Value: &tokensSlice}
}

func (p *TokenIds) Set(tokens string) error {
	if tokens == "" {
		*p.Value = make([]int64, 0)
	} else {
		*p.Value = append(*p.Value, parse(tokens)...)
	}

	return nil
}

func (p *TokenIds) String() string {
	out := make([]string, len(*p.Value))
	for i, d := range *p.Value {
		out[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(out, ",") + "]"
}

func (p TokenIds) Type() string {
	return "int64Slice"
}

func parse(tokens string) []int64 {
	cleanTokens := splitAndTrimEmpty(tokens, ",", " \t\r\n\b")

	out := make([]int64, len(cleanTokens))

	for i, ct := range cleanTokens {
		var err error
		if out[i], err = strconv.ParseInt(ct, 10, 64); err != nil {
			log.Fatal(err)
		}
	}

	return out
}

// SplitAndTrimEmpty slices s into all subslices separated by sep and returns a
// slice of the string s with all leading and trailing Unicode code points
// contained in cutset removed. If sep is empty, SplitAndTrim splits after each
// UTF-8 sequence. First part is equivalent to strings.SplitN with a count of
// -1.  also filter out empty strings, only return non-empty strings.
func splitAndTrimEmpty(s, sep, cutset string) []string {
	if s == "" {
		return []string{}
	}

	spl := strings.Split(s, sep)
	nonEmptyStrings := make([]string, 0, len(spl))

	for i := 0; i < len(spl); i++ {
		element := strings.Trim(spl[i], cutset)
		if element != "" {
			nonEmptyStrings = append(nonEmptyStrings, element)
		}
	}

	return nonEmptyStrings
}
