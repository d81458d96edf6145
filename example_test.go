// example_test.go: Executable examples for godoc
//
// These examples appear in the generated documentation and are executable.
// Run with: go test -run Example

package eplog_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pingseran/eplog"
)

// ExampleNew shows the common lifecycle: create, log, shut down.
func ExampleNew() {
	dir, err := os.MkdirTemp("", "eplog-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := eplog.DefaultConfig()
	cfg.Dir = dir
	cfg.Prefix = "app"
	cfg.QueueCapacity = 1024

	p, err := eplog.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	logger := p.Logger()
	logger.Info("service started")
	logger.Named("worker-1").Warningf("retrying job %d", 42)
	logger.Debug("suppressed at the default info level")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "app.0.log"))
	if err != nil {
		log.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		rec, err := eplog.ParseTextLine(line)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(rec.Level, rec.Seq, rec.ThreadName, rec.Message)
	}
	// Output:
	// I 1 main service started
	// W 1 worker-1 retrying job 42
}

// ExampleParseLevel shows the accepted level spellings.
func ExampleParseLevel() {
	for _, s := range []string{"debug", "W", "4", "test"} {
		l, err := eplog.ParseLevel(s)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(l.Name())
	}
	// Output:
	// DEBUG
	// WARNING
	// ERROR
	// TEST
}

// ExampleParseTextLine reads one persisted record back.
func ExampleParseTextLine() {
	line := "[20250102.030405.123456      7][E][0242ac110002   1234   1235][node1 app db][store.go:88 store.(*DB).Put]write failed"

	rec, err := eplog.ParseTextLine(line)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec.Time.Format(time.RFC3339Nano))
	fmt.Println(rec.Seq, rec.Level.Name(), rec.ThreadName)
	fmt.Printf("%s:%d %s\n", rec.File, rec.Line, rec.Func)
	fmt.Println(rec.Message)
	// Output:
	// 2025-01-02T03:04:05.123456Z
	// 7 ERROR db
	// store.go:88 store.(*DB).Put
	// write failed
}

// ExampleParseSize shows the accepted size suffixes.
func ExampleParseSize() {
	for _, s := range []string{"512", "64KB", "10MB", "1G"} {
		n, err := eplog.ParseSize(s)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(n)
	}
	// Output:
	// 512
	// 65536
	// 10485760
	// 1073741824
}
