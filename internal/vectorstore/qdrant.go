package vectorstore

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"github.com/user/moodpick/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// qdrantMarkerID 构建标记点的 id，普通文档 id 为构建顺序
const qdrantMarkerID = uint64(1) << 62

const qdrantScrollPage = 256

type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Scroll(ctx context.Context, in *pb.ScrollPoints, opts ...grpc.CallOption) (*pb.ScrollResponse, error)
}

type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
	Delete(ctx context.Context, in *pb.DeleteCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// QdrantBackend Qdrant 集合。重建时整个集合删除后重建（内积距离），
// 构建期间服务端读取会失败，需要在维护窗口执行
type QdrantBackend struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
	dimensions  int
	logger      zerolog.Logger
}

// NewQdrant 通过 gRPC 连接 Qdrant
func NewQdrant(addr, collection string, dimensions int, logger zerolog.Logger) (*QdrantBackend, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	q := newQdrantWithClients(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), collection, dimensions, logger)
	q.conn = conn
	return q, nil
}

func newQdrantWithClients(points pointsAPI, collections collectionsAPI, collection string, dimensions int, logger zerolog.Logger) *QdrantBackend {
	return &QdrantBackend{
		points:      points,
		collections: collections,
		collection:  collection,
		dimensions:  dimensions,
		logger:      logger,
	}
}

// Name 实现 Backend
func (q *QdrantBackend) Name() string { return "qdrant" }

func (q *QdrantBackend) exists(ctx context.Context) (bool, error) {
	list, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == q.collection {
			return true, nil
		}
	}
	return false, nil
}

// Replace 实现 Backend：删集合 -> 建集合 -> upsert 文档 -> upsert 构建标记
func (q *QdrantBackend) Replace(ctx context.Context, records []Record) error {
	ok, err := q.exists(ctx)
	if err != nil {
		return err
	}
	if ok {
		if _, err := q.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: q.collection}); err != nil {
			return fmt.Errorf("delete collection %s: %w", q.collection, err)
		}
	}

	if _, err := q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(q.dimensions),
					Distance: pb.Distance_Dot,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("create collection %s: %w", q.collection, err)
	}

	for start := 0; start < len(records); start += qdrantScrollPage {
		end := min(start+qdrantScrollPage, len(records))
		points := make([]*pb.PointStruct, 0, end-start)
		for _, r := range records[start:end] {
			meta := r.Document.Metadata
			points = append(points, newPoint(uint64(r.Seq), r.Vector, map[string]*pb.Value{
				"body":        stringValue(r.Document.Body),
				"title":       stringValue(meta.Title),
				"year":        stringValue(meta.Year),
				"mood_labels": stringValue(meta.MoodLabels),
			}))
		}
		if err := q.upsert(ctx, points); err != nil {
			return fmt.Errorf("upsert %d-%d: %w", start, end, err)
		}
	}

	marker := newPoint(qdrantMarkerID, make([]float32, q.dimensions), map[string]*pb.Value{
		"build_marker": {Kind: &pb.Value_BoolValue{BoolValue: true}},
		"count":        {Kind: &pb.Value_IntegerValue{IntegerValue: int64(len(records))}},
	})
	if err := q.upsert(ctx, []*pb.PointStruct{marker}); err != nil {
		return fmt.Errorf("write build marker: %w", err)
	}
	return nil
}

func (q *QdrantBackend) upsert(ctx context.Context, points []*pb.PointStruct) error {
	wait := true
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         points,
	})
	return err
}

// Load 实现 Backend。数字 id 升序即构建顺序
func (q *QdrantBackend) Load(ctx context.Context) ([]Record, error) {
	var (
		records []Record
		offset  *pb.PointId
		count   = int64(-1)
		limit   = uint32(qdrantScrollPage)
	)

	for {
		resp, err := q.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: q.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil, fmt.Errorf("%w: collection %s not found", ErrIndexUnavailable, q.collection)
			}
			return nil, fmt.Errorf("%w: scroll: %v", ErrIndexUnavailable, err)
		}

		for _, p := range resp.GetResult() {
			payload := p.GetPayload()
			if p.GetId().GetNum() == qdrantMarkerID {
				count = payload["count"].GetIntegerValue()
				continue
			}
			records = append(records, Record{
				Seq:    int(p.GetId().GetNum()),
				Vector: p.GetVectors().GetVector().GetData(),
				Document: recordDocument(
					payload["body"].GetStringValue(),
					payload["title"].GetStringValue(),
					payload["year"].GetStringValue(),
					payload["mood_labels"].GetStringValue(),
				),
			})
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	if count < 0 {
		return nil, fmt.Errorf("%w: build marker missing in %s", ErrIndexUnavailable, q.collection)
	}
	if int64(len(records)) != count {
		return nil, fmt.Errorf("%w: expected %d records, found %d", ErrIndexUnavailable, count, len(records))
	}
	return records, nil
}

// Close 关闭 gRPC 连接
func (q *QdrantBackend) Close() error {
	if q.conn == nil {
		return nil
	}
	return q.conn.Close()
}

func newPoint(id uint64, vector []float32, payload map[string]*pb.Value) *pb.PointStruct {
	return &pb.PointStruct{
		Id: &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: id}},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}},
		},
		Payload: payload,
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func recordDocument(body, title, year, moodLabels string) model.IndexedDocument {
	return model.IndexedDocument{
		Body: body,
		Metadata: model.DocumentMetadata{
			Title:      title,
			Year:       year,
			MoodLabels: moodLabels,
		},
	}
}
