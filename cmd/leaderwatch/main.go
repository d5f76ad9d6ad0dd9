// Command leaderwatch subscribes to the leaderboard stream and prints every
// push it receives.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type entry struct {
	Rank             int     `json:"rank"`
	Username         string  `json:"username"`
	TotalCarbonSaved float64 `json:"total_carbon_saved"`
	Streak           int     `json:"streak"`
	LastActivityDate *string `json:"last_activity_date"`
}

type message struct {
	Type    string `json:"type"`
	Payload struct {
		Entries []entry `json:"entries"`
	} `json:"payload"`
}

func main() {
	url := flag.String("url", "ws://localhost:8080/api/v1/ws/leaderboard", "leaderboard stream URL")
	raw := flag.Bool("raw", false, "print raw frames")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, *url, nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Println("read error:", err)
			}
			return
		}

		if *raw {
			log.Printf("Received:\n%s\n", p)
			continue
		}

		var m message
		if err := json.Unmarshal(p, &m); err != nil {
			log.Println("json unmarshal error:", err)
			continue
		}
		if m.Type != "leaderboard" {
			continue
		}
		printBoard(os.Stdout, m.Payload.Entries)
	}
}

func printBoard(w io.Writer, entries []entry) {
	fmt.Fprintln(w, "----")
	for _, e := range entries {
		last := "-"
		if e.LastActivityDate != nil {
			last = *e.LastActivityDate
		}
		fmt.Fprintf(w, "%3d. %-20s %10.2f kg  streak %-3d last %s\n",
			e.Rank, e.Username, e.TotalCarbonSaved, e.Streak, last)
	}
}
