package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rega"
	"rega/api/grpcserver"
	"rega/infra/kafka"
	"rega/infra/memory"
	"rega/infra/outbox"
	"rega/infra/sequence"
	"rega/jobs/broadcaster"
	"rega/service"
	"rega/wal"
)

func main() {
	var (
		addr      = flag.String("addr", ":9090", "gRPC listen address")
		length    = flag.Int("length", 1024, "number of registers")
		walDir    = flag.String("wal-dir", "./wal_data", "WAL directory")
		outboxDir = flag.String("outbox-dir", "./outbox_data", "outbox directory")
		snapDir   = flag.String("snapshot-dir", "./snapshot_data", "snapshot directory")
		brokers   = flag.String("brokers", "", "comma-separated Kafka brokers (empty disables broadcasting)")
		topic     = flag.String("topic", "rega.changes", "Kafka topic for change events")
		snapTopic = flag.String("snapshot-topic", "rega.snapshots", "Kafka topic for snapshot announcements")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---------------- Array ----------------

	arr := rega.NewAtomicOptionRefArray[[]byte](*length)
	seqGen := sequence.New(0)

	// ---------------- Replay ----------------

	if err := service.Replay(*snapDir, *walDir, arr, seqGen); err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	// ---------------- WAL ----------------

	w, err := wal.Open(wal.Config{
		Dir:             *walDir,
		SegmentSize:     2 * 1024 * 1024,
		SegmentDuration: time.Minute,
		FlushInterval:   200 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("WAL init failed: %v", err)
	}
	defer w.Close()

	// ---------------- Outbox ----------------

	box, err := outbox.Open(*outboxDir)
	if err != nil {
		log.Fatalf("outbox init failed: %v", err)
	}
	defer box.Close()

	// ---------------- Memory ----------------

	pool := memory.NewBufferPool()
	ring := memory.NewRetireRing(1 << 16)

	// ---------------- Service ----------------

	svc := service.NewStoreService(arr, seqGen, w, box, pool, ring)
	defer svc.Close()

	svc.StartReclaimJob(ctx, 50*time.Millisecond)

	// ---------------- Background Jobs ----------------

	var announce func(seq uint64)
	if *brokers != "" {
		brokerList := strings.Split(*brokers, ",")

		bc, err := broadcaster.New(box, brokerList, *topic)
		if err != nil {
			log.Fatalf("broadcaster init failed: %v", err)
		}
		defer bc.Close()
		bc.Start(ctx)

		snapProducer := kafka.NewProducer(brokerList, *snapTopic)
		defer snapProducer.Close()
		announce = func(seq uint64) {
			if err := snapProducer.Announce(ctx, seq); err != nil {
				log.Printf("[snapshot] announce failed (seq=%d): %v", seq, err)
			}
		}
	}

	svc.StartSnapshotJob(ctx, *snapDir, 30*time.Second, announce)

	// ---------------- gRPC ----------------

	gs := grpcserver.NewGRPCServer(svc)
	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen %s: %v", *addr, err)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("[server] shutting down")
		cancel()
		gs.GracefulStop()
	}()

	log.Printf("[server] serving %d registers on %s", *length, *addr)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
