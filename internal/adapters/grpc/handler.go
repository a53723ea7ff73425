package grpc

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
	"github.com/quentinrf/sensor-data-pipeline/internal/ports"
)

// Ingester accepts a batch of reading lines
type Ingester interface {
	Ingest(ctx context.Context, p ports.Payload) (int, error)
}

// Querier reads the curated timeline
type Querier interface {
	Query(ctx context.Context, from, to string) ([]domain.ReadingRow, error)
}

// ReadingServiceHandler implements the gRPC ReadingService
type ReadingServiceHandler struct {
	ingest Ingester
	query  Querier
}

// NewReadingServiceHandler creates a new gRPC handler
func NewReadingServiceHandler(ingest Ingester, query Querier) *ReadingServiceHandler {
	return &ReadingServiceHandler{
		ingest: ingest,
		query:  query,
	}
}

// IngestLines stores a text batch of reading lines
func (h *ReadingServiceHandler) IngestLines(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	log.Debug().Int("bytes", len(req.GetValue())).Msg("IngestLines called")

	_, err := h.ingest.Ingest(ctx, ports.Payload{
		ContentType: "text/plain",
		Body:        []byte(req.GetValue()),
	})
	if err != nil {
		return nil, statusError(err, "failed to ingest lines")
	}
	return wrapperspb.Bool(true), nil
}

// QueryRange returns curated readings for {"from", "to"}
func (h *ReadingServiceHandler) QueryRange(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	from := req.GetFields()["from"].GetStringValue()
	to := req.GetFields()["to"].GetStringValue()

	log.Debug().
		Str("from", from).
		Str("to", to).
		Msg("QueryRange called")

	rows, err := h.query.Query(ctx, from, to)
	if err != nil {
		return nil, statusError(err, "failed to query readings")
	}

	// Convert to protobuf
	values := make([]*structpb.Value, len(rows))
	for i, r := range rows {
		values[i] = convertRowToProto(r)
	}
	return &structpb.ListValue{Values: values}, nil
}

// statusError maps service errors to coarse status codes
func statusError(err error, msg string) error {
	if domain.IsRejection(err) {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	return status.Error(codes.Unavailable, msg)
}

// convertRowToProto converts domain model to protobuf
func convertRowToProto(r domain.ReadingRow) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"time":  structpb.NewStringValue(domain.FormatTimestamp(r.Time)),
			"name":  structpb.NewStringValue(r.Name),
			"value": structpb.NewNumberValue(r.Value),
		},
	})
}
