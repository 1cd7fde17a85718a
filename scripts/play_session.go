package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	grpcadapter "dopamine-deck/internal/adapters/input/grpc"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type stats struct {
	sessions uint64
	swipes   uint64
	errCount uint64
	errCodes map[codes.Code]uint64
	mu       sync.Mutex
}

func (s *stats) fail(worker int, err error) {
	code := status.Code(err)
	atomic.AddUint64(&s.errCount, 1)
	s.mu.Lock()
	s.errCodes[code]++
	s.mu.Unlock()
	fmt.Printf("[W%d] error code=%s msg=%s\n", worker, code.String(), err.Error())
}

func main() {
	addr := flag.String("addr", "127.0.0.1:50051", "gRPC address")
	workers := flag.Int("workers", 1, "number of concurrent sessions")
	skipRate := flag.Float64("skip", 0.2, "fraction of cards swiped left")
	delta := flag.Float64("delta", 150, "drag distance per swipe")
	delay := flag.Duration("delay", 0, "delay between swipes per worker (e.g. 10ms)")
	watch := flag.Bool("watch", true, "print notifications while playing")
	checkDB := flag.Bool("check-db", false, "print journaled sessions after the run")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		cancel()
	}()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Printf("grpc dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	client := grpcadapter.NewDeckClient(conn)

	var st stats
	st.errCodes = make(map[codes.Code]uint64)

	play := func(id int) {
		snap, err := client.StartSession(ctx)
		if err != nil {
			st.fail(id, err)
			return
		}
		atomic.AddUint64(&st.sessions, 1)
		sessionID := snap.GetFields()["session_id"].GetStringValue()
		fmt.Printf("[W%d] session %s started\n", id, sessionID)

		var watchers sync.WaitGroup
		if *watch {
			watchers.Add(1)
			go func() {
				defer watchers.Done()
				printNotifications(ctx, client, id, sessionID)
			}()
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
		for _, card := range snap.GetFields()["pending"].GetListValue().GetValues() {
			taskID := card.GetStructValue().GetFields()["id"].GetStringValue()
			dx := *delta
			if rng.Float64() < *skipRate {
				dx = -dx
			}
			if err := swipe(ctx, client, sessionID, taskID, dx); err != nil {
				st.fail(id, err)
				continue
			}
			atomic.AddUint64(&st.swipes, 1)

			wait := *delay
			if wait < 300*time.Millisecond {
				wait = 300 * time.Millisecond
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}

		final, err := client.EndSession(ctx, sessionID)
		if err != nil {
			st.fail(id, err)
			return
		}
		watchers.Wait()
		printJSON(fmt.Sprintf("[W%d] final", id), final.GetFields()["state"].GetStructValue())
	}

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			play(id + 1)
		}(i)
	}
	wg.Wait()

	if *checkDB {
		if err := printJournal(ctx); err != nil {
			fmt.Printf("db check failed: %v\n", err)
		}
	}

	st.mu.Lock()
	fmt.Printf("summary sessions=%d swipes=%d errors=%d error_codes=%v\n", st.sessions, st.swipes, st.errCount, st.errCodes)
	st.mu.Unlock()
}

func swipe(ctx context.Context, client *grpcadapter.DeckClient, sessionID, taskID string, dx float64) error {
	if _, err := client.DragStart(ctx, sessionID, taskID); err != nil {
		return err
	}
	if _, err := client.DragMove(ctx, sessionID, taskID, dx); err != nil {
		return err
	}
	_, err := client.DragEnd(ctx, sessionID, taskID)
	return err
}

func printNotifications(ctx context.Context, client *grpcadapter.DeckClient, worker int, sessionID string) {
	stream, err := client.Watch(ctx, sessionID)
	if err != nil {
		fmt.Printf("[W%d] watch failed: %v\n", worker, err)
		return
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			return
		}
		if msg.GetFields()["kind"].GetStringValue() == "snapshot" {
			continue
		}
		printJSON(fmt.Sprintf("[W%d] notification", worker), msg)
	}
}

func printJSON(prefix string, msg *structpb.Struct) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		fmt.Printf("%s <unprintable: %v>\n", prefix, err)
		return
	}
	fmt.Printf("%s %s\n", prefix, data)
}

func printJournal(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, buildDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	rows, err := pool.Query(ctx,
		`SELECT id, xp, coins, level, tasks_completed, ended_at IS NOT NULL
		FROM deck_sessions ORDER BY started_at DESC LIMIT 5`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id                               string
			xp, coins, level, tasksCompleted int
			ended                            bool
		)
		if err := rows.Scan(&id, &xp, &coins, &level, &tasksCompleted, &ended); err != nil {
			return err
		}
		fmt.Printf("db session=%s xp=%d coins=%d level=%d completed=%d ended=%v\n", id, xp, coins, level, tasksCompleted, ended)
	}
	return rows.Err()
}

func buildDSN() string {
	db := getEnv("POSTGRES_DB", "dopamine_deck")
	user := getEnv("POSTGRES_USER", "dopamine_deck")
	pass := getEnv("POSTGRES_PASSWORD", "dopamine_deck")
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, db)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
