// Command bench drives a synthetic Zipf-distributed workload against a
// running cache-server over the wire protocol. Adapted from the teacher's
// in-process cmd/bench: the worker-pool and Zipf-key generation shape is
// kept, but every operation now goes over a real TCP connection instead of
// calling the cache library directly, since this repo's cache is a
// networked service rather than an embedded library.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:7000", "cache-server address")
		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys  = flag.Int("keys", 100_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		preload = flag.Int("preload", 1000, "number of keys to PUT before measuring")
	)
	flag.Parse()

	preloadConn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Printf("FATAL: could not connect to %s: %v\n", *addr, err)
		return
	}
	preloadReader := bufio.NewReader(preloadConn)
	for i := 0; i < *preload; i++ {
		k := "k:" + strconv.Itoa(i)
		if err := sendCommand(preloadConn, preloadReader, "PUT "+k+" v"+strconv.Itoa(i)); err != nil {
			fmt.Printf("FATAL: preload failed: %v\n", err)
			preloadConn.Close()
			return
		}
	}
	preloadConn.Close()

	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	var reads, writes, hits, misses, moved, errs, total uint64
	stop := make(chan struct{})
	time.AfterFunc(*duration, func() { close(stop) })

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			conn, err := net.Dial("tcp", *addr)
			if err != nil {
				atomic.AddUint64(&errs, 1)
				return
			}
			defer conn.Close()
			reader := bufio.NewReader(conn)

			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)
			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-stop:
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				var resp string
				var err error
				if int(localR.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					resp, err = roundTrip(conn, reader, "GET "+keyByZipf())
				} else {
					atomic.AddUint64(&writes, 1)
					resp, err = roundTrip(conn, reader, "PUT "+keyByZipf()+" v"+strconv.Itoa(localR.Int()))
				}
				if err != nil {
					atomic.AddUint64(&errs, 1)
					return
				}
				switch {
				case resp == "NOT_FOUND":
					atomic.AddUint64(&misses, 1)
				case len(resp) >= 5 && resp[:5] == "VALUE":
					atomic.AddUint64(&hits, 1)
				case len(resp) >= 5 && resp[:5] == "MOVED":
					atomic.AddUint64(&moved, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	writesN := atomic.LoadUint64(&writes)
	hitsN := atomic.LoadUint64(&hits)
	missesN := atomic.LoadUint64(&misses)
	movedN := atomic.LoadUint64(&moved)
	errsN := atomic.LoadUint64(&errs)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("addr=%s workers=%d keys=%d dur=%v seed=%d\n", *addr, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  errs=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN, errsN)
	fmt.Printf("hits=%d  misses=%d  moved=%d  hit-rate=%.2f%%\n", hitsN, missesN, movedN, hitRate)
}

func sendCommand(conn net.Conn, r *bufio.Reader, cmd string) error {
	_, err := roundTrip(conn, r, cmd)
	return err
}

func roundTrip(conn net.Conn, r *bufio.Reader, cmd string) (string, error) {
	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return line[:len(line)-1], nil
}
