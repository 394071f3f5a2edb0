// Command mc-client is a minimal example consumer of the client package:
// it connects, respawns once on death, and logs every chat message it
// receives. Grounded on the original project's own example binary
// (crates/miners-test/src/main.rs), rendered as a flag-driven Go CLI
// instead of a hardcoded example.
package main

import (
	"flag"
	"log"

	"miners-go/client"
)

func main() {
	host := flag.String("host", "localhost", "server host")
	port := flag.Uint("port", 25565, "server port")
	username := flag.String("username", "miners_client", "login username")
	flag.Parse()

	c, err := client.New(client.Config{
		Username: *username,
		Host:     *host,
		Port:     uint16(*port),
	})
	if err != nil {
		log.Fatalf("mc-client: connect failed: %v", err)
	}

	client.Once(c, func(c *client.Client, e client.SpawnEvent) {
		log.Printf("mc-client: spawned as %s", c.Username())

		client.On(c, func(c *client.Client, e client.DeathEvent) {
			log.Printf("mc-client: died, respawning")
			if err := c.Respawn(); err != nil {
				log.Printf("mc-client: respawn failed: %v", err)
			}
		})
	})

	client.On(c, func(c *client.Client, e client.ChatMessageEvent) {
		log.Printf("mc-client: chat: %s", e.Message.PlainMessage)
	})

	client.On(c, func(c *client.Client, e client.DisconnectEvent) {
		log.Printf("mc-client: disconnected: %v", e.Err)
	})

	if err := c.Start(); err != nil {
		log.Printf("mc-client: stopped: %v", err)
	}
}
