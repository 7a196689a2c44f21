// Command replay is a REPL test harness for the pinyin IME engine: it
// loads a profile (dictionary, static n-gram) and the shared user
// adapter, then replays a script of commands from stdin, printing the
// ranked candidate list after every buffer change. Grounded on
// cmd/score/score.go's flag parsing and profiling scaffolding (kho/easy,
// runtime/pprof), repurposed from LM perplexity scoring to IME replay.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/123qweraz/pinyin-ime"
)

func main() {
	var args struct {
		Dict      string `name:"dict" usage:"dictionary store base path (no .index/.data suffix)"`
		Ngram     string `name:"ngram" usage:"static ngram base path (no .index/.data/.unigram suffix)"`
		Syllables string `name:"syllables" usage:"newline-delimited syllable list"`
		Adapter   string `name:"adapter" usage:"user adapter JSON path; empty starts from scratch"`
	}
	cpuprofile := flag.String("cpuprofile", "", "path to write CPU profile")
	easy.ParseFlagsAndArgs(&args)

	if *cpuprofile != "" {
		w := easy.MustCreate(*cpuprofile)
		pprof.StartCPUProfile(w)
		defer pprof.StopCPUProfile()
		defer w.Close()
	}

	syl, err := pinyinime.LoadSyllableSet(args.Syllables)
	if err != nil {
		glog.Fatal("loading syllable set: ", err)
	}
	dict, err := pinyinime.LoadDictionaryStore(args.Dict)
	if err != nil {
		glog.Fatal("loading dictionary: ", err)
	}
	defer dict.Close()

	ngram := pinyinime.NewNgramModel()
	if err := ngram.LoadStaticNgram(args.Ngram); err != nil {
		glog.Warningf("loading static ngram: %v; scoring with static layer disabled", err)
	}
	defer ngram.Close()

	adapter := pinyinime.NewUserAdapter()
	if args.Adapter != "" {
		adapter.LoadUserAdapter(args.Adapter)
	}

	seg := pinyinime.NewSegmenter(syl)
	proc := pinyinime.NewProcessor(seg, adapter)
	proc.AddProfile("default", dict, ngram)
	if args.Adapter != "" {
		proc.SetAdapterFlusher(pinyinime.NewAdapterFlusher(), args.Adapter)
	}

	runRepl(proc, args.Adapter)
}

// runRepl reads one command per line: a bare word types it as literal
// pinyin keys; "commit N" selects and commits candidate N (0-based);
// "reset" clears the buffer; "quit" exits.
func runRepl(proc *pinyinime.Processor, adapterPath string) {
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit":
			if adapterPath != "" {
				if err := proc.Adapter().SaveUserAdapter(adapterPath); err != nil {
					glog.Errorf("saving adapter: %v", err)
				}
			}
			return
		case "reset":
			proc.Reset()
		case "commit":
			if len(fields) != 2 {
				fmt.Println("usage: commit N")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("bad index:", fields[1])
				continue
			}
			proc.CommitCandidate(n)
		default:
			for _, r := range line {
				proc.HandleRune(r)
			}
		}
		printState(proc)
	}
	if err := in.Err(); err != nil {
		glog.Fatal(err)
	}
}

func printState(proc *pinyinime.Processor) {
	fmt.Printf("buffer=%q state=%v\n", proc.Buffer(), proc.State())
	for i, c := range proc.Candidates() {
		fmt.Printf("  %d: %s\n", i, c)
	}
}
