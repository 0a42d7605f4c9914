package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/gloworm-vision/colorlight/color"
	"github.com/gloworm-vision/colorlight/osc"
	"github.com/sirupsen/logrus"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: oscsend [options] red green blue")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "sends one /color OSC message to a colord instance")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
}

func main() {
	addr := flag.String("addr", "127.0.0.1:1337", "colord OSC address")
	kind := flag.String("type", "int", "argument encoding: int, float, double or packed")
	flag.Usage = usage
	flag.Parse()

	logger := logrus.New()

	msg, err := colorMessage(*kind, flag.Args())
	if err != nil {
		usage()
		logger.WithError(err).Fatal("invalid color")
	}

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		logger.WithError(err).Fatal("unable to dial")
	}
	defer conn.Close()

	if _, err := msg.Encode(conn); err != nil {
		logger.WithError(err).Fatal("unable to send")
	}

	logger.WithFields(logrus.Fields{"addr": *addr, "arguments": msg.Arguments}).Info("sent")
}

func colorMessage(kind string, args []string) (*osc.Message, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("need exactly 3 channel values, got %d", len(args))
	}

	var values [3]float64
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		values[i] = v
	}

	msg := &osc.Message{Address: "/color"}
	switch kind {
	case "int":
		for _, v := range values {
			msg.Arguments = append(msg.Arguments, int32(v))
		}
	case "float":
		for _, v := range values {
			msg.Arguments = append(msg.Arguments, float32(v))
		}
	case "double":
		for _, v := range values {
			msg.Arguments = append(msg.Arguments, v)
		}
	case "packed":
		packed := color.FromFloat64s(values[0], values[1], values[2]).Packed()
		msg.Arguments = append(msg.Arguments, osc.NewRGBA(packed))
	default:
		return nil, fmt.Errorf("unknown type %q", kind)
	}

	return msg, nil
}
