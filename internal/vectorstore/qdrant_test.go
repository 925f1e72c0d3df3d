package vectorstore

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type mockPoints struct {
	upserts   []*pb.UpsertPoints
	upsertErr error
	pages     []*pb.ScrollResponse
	scrollErr error
	scrolls   int
}

func (m *mockPoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.upserts = append(m.upserts, in)
	return &pb.PointsOperationResponse{}, m.upsertErr
}

func (m *mockPoints) Scroll(_ context.Context, _ *pb.ScrollPoints, _ ...grpc.CallOption) (*pb.ScrollResponse, error) {
	if m.scrollErr != nil {
		return nil, m.scrollErr
	}
	resp := m.pages[m.scrolls]
	m.scrolls++
	return resp, nil
}

type mockCollections struct {
	existing []string
	created  []*pb.CreateCollection
	deleted  []string
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	resp := &pb.ListCollectionsResponse{}
	for _, name := range m.existing {
		resp.Collections = append(resp.Collections, &pb.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (m *mockCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = append(m.created, in)
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func (m *mockCollections) Delete(_ context.Context, in *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.deleted = append(m.deleted, in.GetCollectionName())
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func retrieved(id uint64, payload map[string]*pb.Value) *pb.RetrievedPoint {
	return &pb.RetrievedPoint{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: id}},
		Payload: payload,
	}
}

func TestQdrant_ReplaceDropsAndRecreates(t *testing.T) {
	points := &mockPoints{}
	cols := &mockCollections{existing: []string{"movies"}}
	q := newQdrantWithClients(points, cols, "movies", 2, zerolog.Nop())

	records := []Record{
		{Seq: 0, Vector: []float32{1, 0}, Document: doc("A", "2001", "감동")},
		{Seq: 1, Vector: []float32{0, 1}, Document: doc("B", "2002", "공포")},
	}
	require.NoError(t, q.Replace(context.Background(), records))

	assert.Equal(t, []string{"movies"}, cols.deleted)
	require.Len(t, cols.created, 1)
	params := cols.created[0].GetVectorsConfig().GetParams()
	assert.Equal(t, pb.Distance_Dot, params.GetDistance())
	assert.Equal(t, uint64(2), params.GetSize())

	require.Len(t, points.upserts, 2)
	docs := points.upserts[0].GetPoints()
	require.Len(t, docs, 2)
	assert.Equal(t, uint64(1), docs[1].GetId().GetNum())
	assert.Equal(t, "B", docs[1].GetPayload()["title"].GetStringValue())

	marker := points.upserts[1].GetPoints()[0]
	assert.Equal(t, qdrantMarkerID, marker.GetId().GetNum())
	assert.Equal(t, int64(2), marker.GetPayload()["count"].GetIntegerValue())
}

func TestQdrant_ReplaceSkipsDeleteWhenMissing(t *testing.T) {
	cols := &mockCollections{}
	q := newQdrantWithClients(&mockPoints{}, cols, "movies", 2, zerolog.Nop())

	require.NoError(t, q.Replace(context.Background(), []Record{{Seq: 0, Vector: []float32{1, 0}, Document: doc("A", "2001", "")}}))
	assert.Empty(t, cols.deleted)
	assert.Len(t, cols.created, 1)
}

func TestQdrant_LoadPaginates(t *testing.T) {
	next := &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: 1}}
	points := &mockPoints{pages: []*pb.ScrollResponse{
		{
			Result:         []*pb.RetrievedPoint{retrieved(0, map[string]*pb.Value{"title": stringValue("A"), "body": stringValue("a")})},
			NextPageOffset: next,
		},
		{
			Result: []*pb.RetrievedPoint{
				retrieved(1, map[string]*pb.Value{"title": stringValue("B"), "mood_labels": stringValue("감동, 공포")}),
				retrieved(qdrantMarkerID, map[string]*pb.Value{"count": {Kind: &pb.Value_IntegerValue{IntegerValue: 2}}}),
			},
		},
	}}
	q := newQdrantWithClients(points, &mockCollections{}, "movies", 2, zerolog.Nop())

	records, err := q.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Document.Metadata.Title)
	assert.Equal(t, "a", records[0].Document.Body)
	assert.Equal(t, 1, records[1].Seq)
	assert.Equal(t, "감동, 공포", records[1].Document.Metadata.MoodLabels)
}

func TestQdrant_LoadWithoutMarker(t *testing.T) {
	points := &mockPoints{pages: []*pb.ScrollResponse{
		{Result: []*pb.RetrievedPoint{retrieved(0, map[string]*pb.Value{"title": stringValue("A")})}},
	}}
	q := newQdrantWithClients(points, &mockCollections{}, "movies", 2, zerolog.Nop())

	_, err := q.Load(context.Background())
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestQdrant_LoadMissingCollection(t *testing.T) {
	points := &mockPoints{scrollErr: status.Error(codes.NotFound, "collection not found")}
	q := newQdrantWithClients(points, &mockCollections{}, "movies", 2, zerolog.Nop())

	_, err := q.Load(context.Background())
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestQdrant_ReplaceUpsertError(t *testing.T) {
	points := &mockPoints{upsertErr: errors.New("rpc fail")}
	q := newQdrantWithClients(points, &mockCollections{}, "movies", 2, zerolog.Nop())

	err := q.Replace(context.Background(), []Record{{Seq: 0, Vector: []float32{1, 0}, Document: doc("A", "2001", "")}})
	assert.Error(t, err)
}
