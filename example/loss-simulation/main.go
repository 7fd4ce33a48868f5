package main

import (
	"bytes"
	"crypto/rand"
	"flag"
	"log"
	mrand "math/rand"
	"time"

	"github.com/andreypfau/raptorq"
)

var size = flag.Int("size", 1<<20, "object size in bytes")
var mtu = flag.Uint("mtu", 1280, "max packet payload")
var loss = flag.Float64("loss", 0.2, "share of packets lost in transit")
var repair = flag.Uint("repair", 0, "repair packets per block, computed from loss when 0")
var configPath = flag.String("config", "", "path to yaml config")
var verbose = flag.Bool("v", false, "log engine events")

func main() {
	flag.Parse()

	if *verbose {
		raptorq.Logger = log.Println
	}

	cfg := raptorq.DefaultConfig
	if *configPath != "" {
		var err error
		if cfg, err = raptorq.LoadConfig(*configPath); err != nil {
			panic(err)
		}
	}
	if *verbose {
		conf, err := cfg.Marshal()
		if err != nil {
			panic(err)
		}
		log.Printf("config:\n%s", conf)
	}

	data := make([]byte, *size)
	_, _ = rand.Read(data)

	tm := time.Now()
	enc, err := raptorq.NewEncoderWithConfig(cfg, data, uint16(*mtu))
	if err != nil {
		panic(err)
	}
	oti := enc.OTI()
	log.Println("encoder ready in", time.Since(tm), "ticket:", oti.Ticket(),
		"blocks:", oti.SourceBlocks, "sub-blocks:", oti.SubBlocks, "symbol size:", oti.SymbolSize)

	rep := uint32(*repair)
	if rep == 0 {
		k := enc.Blocks()[0].SourceSymbolsNum()
		rep = uint32(float64(k)*(*loss)/(1-*loss)) + 10
	}

	total, err := enc.Encode(rep)
	if err != nil {
		panic(err)
	}

	// receiver knows only the ticket
	rcvOTI, err := raptorq.ParseTicket(oti.Ticket())
	if err != nil {
		panic(err)
	}
	dec, err := raptorq.NewDecoderFromOTI(cfg, rcvOTI)
	if err != nil {
		panic(err)
	}

	out := make([]byte, *size)
	buf := make([]byte, enc.PacketSize())
	sent, lost := 0, 0

	tm = time.Now()
	for {
		n, err := enc.NextPacket(buf)
		if err != nil {
			panic(err)
		}
		if n == 0 {
			log.Println("all", total, "packets sent, object is not recovered, lost:", lost)
			return
		}
		sent++

		if mrand.Float64() < *loss {
			lost++
			continue
		}

		sz, err := dec.Decode(buf[:n], out)
		if err != nil {
			panic(err)
		}
		if sz > 0 {
			break
		}
	}

	log.Println("recovered in", time.Since(tm), "sent:", sent, "of", total, "lost:", lost, "equal:", bytes.Equal(out, data))
}
