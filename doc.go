// Package eplog provides an asynchronous structured-log pipeline.
//
// Any number of goroutines emit leveled records through a Logger without
// ever blocking on disk I/O. A single background writer owns the log files,
// serializes records as text or JSON lines and rotates the primary file by
// size into a fixed set of numbered files.
//
// # Quick Start
//
//	p, err := eplog.New(eplog.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Close()
//
//	log := p.Logger()
//	log.Info("service started")
//	log.Named("worker").Errorf("job %d failed: %v", id, err)
//
// # Levels and sequence numbers
//
// Levels are ordered None < Debug < Info < Warning < Error < Test. Each
// level has its own counter: every record that passes the threshold gets
// the next number for its level, in the order the logging calls were made.
// A call below the threshold returns before reading the clock, walking the
// stack or formatting its message.
//
//	p.SetThreshold(eplog.LevelWarning) // takes effect on the next call
//
// # Files
//
// With Dir "./log" and Prefix "ep":
//
//	log/ep.0.log       primary, newest records
//	log/ep.1.log       previous primary (ep.1.log.gz with Compress)
//	...
//	log/ep.9.log       oldest kept (Retention 10)
//	log/ep.quick.log   test-level records while Debug is on, never rotated
//
// The text line format is
//
//	[20250102.030405.123456      7][I][0242ac110002   1234   1235][host app main][main.go:42 main.main]message
//
// holding UTC time, sequence, level code, node id, pid, OS thread id, node,
// process and thread names, then the call site. ParseTextLine and
// ParseJSONLine read lines back; Replay feeds a file through a pipeline.
//
// # Backpressure
//
// Each of the two queues holds Config.QueueCapacity records. When a queue
// is full the record is dropped and counted in Stats().Dropped; the caller
// is never told and never waits.
//
// # Shutdown
//
// Shutdown stops intake and gives the writer Config.Grace to drain. When
// the grace period ends with records still queued, one error record
// "N records were not written" is appended to the primary before the files
// are synced and closed.
//
// # Configuration
//
// LoadConfig reads YAML, TOML or JSON files with EPLOG_ environment
// overrides. WatchConfig re-applies level and debug when the file changes.
// I/O errors never reach logging callers; set Config.ErrorCallback to see
// them.
package eplog
