package domain

import "testing"

func TestProviderPairString(t *testing.T) {
	p := ProviderPair{ProviderType: "local", ProviderName: "docs"}
	if got, want := p.String(), "local/docs"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestProviderPairIsZero(t *testing.T) {
	if !(ProviderPair{}).IsZero() {
		t.Error("zero-value ProviderPair should be IsZero")
	}
	if (ProviderPair{ProviderType: "local"}).IsZero() {
		t.Error("pair with a type set should not be IsZero")
	}
}

func TestRankedChunkCitation(t *testing.T) {
	tests := []struct {
		name string
		rc   RankedChunk
		want string
	}{
		{
			name: "with provider pair",
			rc: RankedChunk{Chunk: Chunk{
				Pair:     ProviderPair{ProviderType: "s3", ProviderName: "bucket1"},
				Filename: "report.txt",
				ChunkNum: 3,
			}},
			want: "[s3/bucket1:report.txt#chunk3]",
		},
		{
			name: "without provider pair",
			rc: RankedChunk{Chunk: Chunk{
				Filename: "report.txt",
				ChunkNum: 0,
			}},
			want: "[report.txt#chunk0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rc.Citation(); got != tt.want {
				t.Errorf("Citation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRankedChunkAddress(t *testing.T) {
	withPair := RankedChunk{Chunk: Chunk{
		Pair:     ProviderPair{ProviderType: "local", ProviderName: "docs"},
		Filename: "a.md",
	}}
	if got, want := withPair.Address(), "local/docs:a.md"; got != want {
		t.Errorf("Address() = %q, want %q", got, want)
	}

	bare := RankedChunk{Chunk: Chunk{Filename: "a.md"}}
	if got, want := bare.Address(), "a.md"; got != want {
		t.Errorf("Address() = %q, want %q", got, want)
	}
}
