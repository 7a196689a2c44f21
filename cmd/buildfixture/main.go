// Command buildfixture compiles a tab-separated source file into the
// mmap'd dictionary and static-ngram binary formats described in
// SPEC_FULL.md §6. Grounded on cmd/compile/compile.go's role as the
// offline compiler standing between a human-editable source and the
// binary format the engine memory-maps at runtime.
//
// Dictionary source lines: pinyin<TAB>word<TAB>hint
// Ngram unigram lines:     U<TAB>token<TAB>score
// Ngram transition lines:  T<TAB>context<TAB>token<TAB>score
package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/123qweraz/pinyin-ime"
)

func main() {
	var args struct {
		DictSrc  string `name:"dict_src" usage:"dictionary source path (pinyin<TAB>word<TAB>hint)"`
		DictOut  string `name:"dict_out" usage:"dictionary store output base path"`
		NgramSrc string `name:"ngram_src" usage:"ngram source path (U/T lines)"`
		NgramOut string `name:"ngram_out" usage:"ngram output base path"`
	}
	easy.ParseFlagsAndArgs(&args)

	if args.DictSrc != "" {
		if err := buildDict(args.DictSrc, args.DictOut); err != nil {
			glog.Fatal("building dictionary: ", err)
		}
	}
	if args.NgramSrc != "" {
		if err := buildNgram(args.NgramSrc, args.NgramOut); err != nil {
			glog.Fatal("building ngram: ", err)
		}
	}
}

func buildDict(srcPath, outPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	byKey := make(map[string][]pinyinime.Entry)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 2 {
			glog.Warningf("skipping malformed dictionary line: %q", line)
			continue
		}
		key, word := parts[0], parts[1]
		hint := ""
		if len(parts) == 3 {
			hint = parts[2]
		}
		byKey[key] = append(byKey[key], pinyinime.Entry{Word: word, Hint: hint})
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pinyinime.BuildStore(outPath, byKey)
}

func buildNgram(srcPath, outPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	transitions := make(map[string]map[string]uint32)
	unigrams := make(map[string]uint32)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		switch parts[0] {
		case "U":
			if len(parts) != 3 {
				glog.Warningf("skipping malformed unigram line: %q", line)
				continue
			}
			score, err := strconv.ParseUint(parts[2], 10, 32)
			if err != nil {
				glog.Warningf("skipping unigram line with bad score: %q", line)
				continue
			}
			unigrams[parts[1]] = uint32(score)
		case "T":
			if len(parts) != 4 {
				glog.Warningf("skipping malformed transition line: %q", line)
				continue
			}
			score, err := strconv.ParseUint(parts[3], 10, 32)
			if err != nil {
				glog.Warningf("skipping transition line with bad score: %q", line)
				continue
			}
			byToken, ok := transitions[parts[1]]
			if !ok {
				byToken = make(map[string]uint32)
				transitions[parts[1]] = byToken
			}
			byToken[parts[2]] = uint32(score)
		default:
			glog.Warningf("skipping unrecognised line: %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pinyinime.BuildStaticNgram(outPath, transitions, unigrams)
}
