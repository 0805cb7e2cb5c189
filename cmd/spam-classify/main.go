package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/engine"
	"github.com/ngocminh/spam-sentinel/internal/features"
	"github.com/ngocminh/spam-sentinel/internal/logging"
	"github.com/ngocminh/spam-sentinel/internal/registry"
	"github.com/ngocminh/spam-sentinel/internal/textnorm"
)

var (
	// Input flags
	inputFile = flag.String("file", "", "Input message file (use stdin if not specified)")
	modelName = flag.String("model", "Voting Classifier", "Model to classify with")
	allModels = flag.Bool("all", false, "Classify with every available model")
	modelsDir = flag.String("models-dir", "./models", "Directory holding model artifacts")
	listOnly  = flag.Bool("list", false, "List available models and exit")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load model artifacts
	reg, err := registry.New(*modelsDir, logger)
	if err != nil {
		logger.Fatal("Failed to load model artifacts",
			zap.Error(err),
			zap.String("models_dir", *modelsDir))
	}

	if *listOnly {
		fmt.Printf("=== Available Models ===\n")
		for _, name := range reg.ListAvailableModels() {
			info, err := reg.DescribeModel(name)
			if err != nil {
				continue
			}
			status := "missing"
			if info.Exists {
				status = fmt.Sprintf("%d bytes", info.SizeBytes)
			}
			fmt.Printf("%-20s %-40s %s\n", info.Name, info.Path, status)
		}
		return
	}

	// Read message from file or stdin
	var messageReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		messageReader = file
		logger.Info("Reading message from file", zap.String("file", *inputFile))
	} else {
		messageReader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	messageBytes, err := io.ReadAll(messageReader)
	if err != nil {
		logger.Fatal("Failed to read message", zap.Error(err))
	}
	message := string(messageBytes)

	normalizer := textnorm.NewNormalizer(logger)
	eng := engine.New(reg, normalizer, features.NewExtractor(normalizer), logger)

	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Length: %d bytes\n", len(message))
	fmt.Printf("\n")

	startTime := time.Now()

	if *allModels {
		names := reg.ListAvailableModels()
		outcomes := eng.ClassifyMultiModel(message, names)

		fmt.Printf("=== Results ===\n")
		for _, name := range names {
			outcome := outcomes[name]
			if outcome.Err != nil {
				fmt.Printf("%-20s error: %v\n", name, outcome.Err)
				continue
			}
			fmt.Printf("%-20s %s\n", name, outcome.Label)
		}
		fmt.Printf("Processing time: %v\n", time.Since(startTime))
		return
	}

	label, err := eng.ClassifyOne(message, *modelName)
	if err != nil {
		logger.Fatal("Failed to classify message", zap.Error(err), zap.String("model", *modelName))
	}

	fmt.Printf("=== Results ===\n")
	fmt.Printf("Model: %s\n", *modelName)
	fmt.Printf("Label: %s\n", label)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))
}
