package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	trainMethod   = "/floodmap.Classifier/Train"
	predictMethod = "/floodmap.Classifier/Predict"
)

type Kind string

const (
	RandomForest Kind = "rf"
	SVM          Kind = "svm"
)

// RBF kernel parameters of the reference SVM classifier.
const (
	DefaultGamma = 0.5
	DefaultCost  = 10
)

// ModelConfig selects and tunes the classifier trained by the sidecar.
type ModelConfig struct {
	Kind   Kind    `json:"kind"`
	Trees  int     `json:"trees,omitempty"`
	Kernel string  `json:"kernel,omitempty"`
	Gamma  float64 `json:"gamma,omitempty"`
	Cost   float64 `json:"cost,omitempty"`
	Seed   int64   `json:"seed"`
}

func (c ModelConfig) Validate() error {
	switch c.Kind {
	case RandomForest:
		if c.Trees < 1 {
			return fmt.Errorf("random forest needs at least one tree, got %d", c.Trees)
		}
	case SVM:
		if c.Kernel == "" {
			return errors.New("svm needs a kernel")
		}
	default:
		return fmt.Errorf("unknown classifier kind %q", c.Kind)
	}
	return nil
}

func (c ModelConfig) String() string {
	if c.Kind == RandomForest {
		return fmt.Sprintf("rf(trees=%d)", c.Trees)
	}
	return fmt.Sprintf("svm(kernel=%s, gamma=%g, cost=%g)", c.Kernel, c.Gamma, c.Cost)
}

// Model is a classifier held by the sidecar.
type Model struct {
	ID     string
	Config ModelConfig
}

// Columns holds a feature table column by column.
type Columns map[string][]float64

func (c Columns) Rows() int {
	for _, v := range c {
		return len(v)
	}
	return 0
}

func (c Columns) validate(required []string) error {
	n := -1
	for _, name := range required {
		values, ok := c[name]
		if !ok {
			return fmt.Errorf("missing column %q", name)
		}
		if n >= 0 && len(values) != n {
			return fmt.Errorf("column %q has %d rows, expected %d", name, len(values), n)
		}
		n = len(values)
	}
	return nil
}

// Client talks to the classifier sidecar with untyped structpb messages.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(64*1024*1024),
			grpc.MaxCallSendMsgSize(64*1024*1024),
		),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gRPC server: %w", err)
	}
	return &Client{conn: conn, timeout: 15 * time.Minute}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Train fits a classifier on features, predicting labelColumn from inputColumns.
func (c *Client) Train(ctx context.Context, features Columns, labelColumn string, inputColumns []string, cfg ModelConfig) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	if err := features.validate(append([]string{labelColumn}, inputColumns...)); err != nil {
		return Model{}, err
	}

	inputs := make([]any, len(inputColumns))
	for i, name := range inputColumns {
		inputs[i] = name
	}
	req, err := structpb.NewStruct(map[string]any{
		"features":      columnsToMap(features, append([]string{labelColumn}, inputColumns...)),
		"label_column":  labelColumn,
		"input_columns": inputs,
		"config": map[string]any{
			"kind":   string(cfg.Kind),
			"trees":  float64(cfg.Trees),
			"kernel": cfg.Kernel,
			"gamma":  cfg.Gamma,
			"cost":   cfg.Cost,
			"seed":   float64(cfg.Seed),
		},
	})
	if err != nil {
		return Model{}, fmt.Errorf("failed to build train request: %w", err)
	}

	resp, err := c.invoke(ctx, trainMethod, req)
	if err != nil {
		return Model{}, fmt.Errorf("error calling Train: %w", err)
	}
	id := resp.GetFields()["model_id"].GetStringValue()
	if id == "" {
		return Model{}, errors.New("train response has no model_id")
	}
	return Model{ID: id, Config: cfg}, nil
}

// Predict returns one class label per row of features.
func (c *Client) Predict(ctx context.Context, model Model, features Columns, inputColumns []string) ([]int, error) {
	if err := features.validate(inputColumns); err != nil {
		return nil, err
	}
	req, err := structpb.NewStruct(map[string]any{
		"model_id": model.ID,
		"features": columnsToMap(features, inputColumns),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}

	resp, err := c.invoke(ctx, predictMethod, req)
	if err != nil {
		return nil, fmt.Errorf("error calling Predict: %w", err)
	}

	values := resp.GetFields()["labels"].GetListValue().GetValues()
	rows := 0
	if len(inputColumns) > 0 {
		rows = len(features[inputColumns[0]])
	}
	if len(values) != rows {
		return nil, fmt.Errorf("predict returned %d labels for %d rows", len(values), rows)
	}
	labels := make([]int, len(values))
	for i, v := range values {
		labels[i] = int(v.GetNumberValue())
	}
	return labels, nil
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func columnsToMap(c Columns, names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		values := make([]any, len(c[name]))
		for i, v := range c[name] {
			values[i] = v
		}
		out[name] = values
	}
	return out
}
