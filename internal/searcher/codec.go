package searcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrBadRecord reports a malformed or structurally inconsistent searcher
// record passed to Decode.
var ErrBadRecord = errors.New("malformed searcher record")

// record is the portable shape of a frozen Searcher. Per-node rune data is
// already gone by Finalize, so nodes carry only length, name and the
// terminal flag. Transition lists come from map iteration and carry no
// ordering guarantee; two encodings of the same automaton may differ
// byte-wise while decoding to equivalent structures.
type record struct {
	Nodes  []nodeRecord  `json:"nodes" msgpack:"nodes"`
	Blacks []blackRecord `json:"blacks" msgpack:"blacks"`
	Blues  []blueRecord  `json:"blues" msgpack:"blues"`
}

type nodeRecord struct {
	Length   int    `json:"length" msgpack:"length"`
	Name     string `json:"name,omitempty" msgpack:"name"`
	Terminal bool   `json:"terminal,omitempty" msgpack:"terminal"`
}

type blackRecord struct {
	From   int    `json:"from" msgpack:"from"`
	Letter string `json:"letter" msgpack:"letter"`
	To     int    `json:"to" msgpack:"to"`
}

type blueRecord struct {
	From int `json:"from" msgpack:"from"`
	To   int `json:"to" msgpack:"to"`
}

func (s *Searcher) toRecord() record {
	rec := record{Nodes: make([]nodeRecord, len(s.nodes))}
	for i, n := range s.nodes {
		rec.Nodes[i] = nodeRecord{Length: n.length, Name: n.name, Terminal: n.terminal}
	}
	for e, to := range s.blacks {
		rec.Blacks = append(rec.Blacks, blackRecord{From: e.from, Letter: string(e.letter), To: to})
	}
	for from, to := range s.blues {
		rec.Blues = append(rec.Blues, blueRecord{From: from, To: to})
	}
	return rec
}

func fromRecord(rec record) (*Searcher, error) {
	if len(rec.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes (root missing)", ErrBadRecord)
	}
	total := len(rec.Nodes)

	s := &Searcher{
		nodes:  make([]node, total),
		blacks: make(map[edge]int, len(rec.Blacks)),
		blues:  make(map[int]int, len(rec.Blues)),
	}
	for i, n := range rec.Nodes {
		if n.Length < 0 {
			return nil, fmt.Errorf("%w: node %d has negative length %d", ErrBadRecord, i+1, n.Length)
		}
		s.nodes[i] = node{length: n.Length, name: n.Name, terminal: n.Terminal}
	}
	for i, b := range rec.Blacks {
		if b.From < 1 || b.From > total || b.To < 1 || b.To > total {
			return nil, fmt.Errorf("%w: black edge %d references node %d -> %d outside 1..%d", ErrBadRecord, i, b.From, b.To, total)
		}
		letter, size := utf8.DecodeRuneInString(b.Letter)
		if (letter == utf8.RuneError && size <= 1) || size != len(b.Letter) {
			return nil, fmt.Errorf("%w: black edge %d letter %q is not a single character", ErrBadRecord, i, b.Letter)
		}
		s.blacks[edge{b.From, letter}] = b.To
	}
	for i, b := range rec.Blues {
		if b.From < 1 || b.From > total || b.To < 1 || b.To > total {
			return nil, fmt.Errorf("%w: blue link %d references node %d -> %d outside 1..%d", ErrBadRecord, i, b.From, b.To, total)
		}
		// A blue link targets a strictly shorter suffix path; a self link
		// would make traversal loop without consuming input.
		if b.From == b.To {
			return nil, fmt.Errorf("%w: blue link %d on node %d points at itself", ErrBadRecord, i, b.From)
		}
		s.blues[b.From] = b.To
	}
	return s, nil
}

// Encode serializes the frozen automaton as a portable JSON record.
func Encode(s *Searcher) ([]byte, error) {
	b, err := json.Marshal(s.toRecord())
	if err != nil {
		return nil, fmt.Errorf("encode searcher: %w", err)
	}
	return b, nil
}

// Decode rehydrates a Searcher from a JSON record produced by Encode. The
// transition lists may arrive in any order.
func Decode(data []byte) (*Searcher, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return fromRecord(rec)
}

// EncodeBinary serializes the automaton with msgpack. The binary form is
// denser than JSON and suits on-disk compiled set files; both forms decode
// to equivalent automatons.
func EncodeBinary(s *Searcher) ([]byte, error) {
	b, err := msgpack.Marshal(s.toRecord())
	if err != nil {
		return nil, fmt.Errorf("encode searcher: %w", err)
	}
	return b, nil
}

// DecodeBinary rehydrates a Searcher from a msgpack record.
func DecodeBinary(data []byte) (*Searcher, error) {
	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return fromRecord(rec)
}

// Fingerprint returns an order-independent digest of the frozen structure.
// Two automatons that answer every query identically hash equal, no matter
// what order their transition lists serialized in.
func Fingerprint(s *Searcher) uint64 {
	rec := s.toRecord()
	sort.Slice(rec.Blacks, func(i, j int) bool {
		a, b := rec.Blacks[i], rec.Blacks[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.Letter != b.Letter {
			return a.Letter < b.Letter
		}
		return a.To < b.To
	})
	sort.Slice(rec.Blues, func(i, j int) bool {
		return rec.Blues[i].From < rec.Blues[j].From
	})

	d := xxhash.New()
	for _, n := range rec.Nodes {
		fmt.Fprintf(d, "n%d:%q:%t;", n.Length, n.Name, n.Terminal)
	}
	for _, b := range rec.Blacks {
		fmt.Fprintf(d, "k%d:%q:%d;", b.From, b.Letter, b.To)
	}
	for _, b := range rec.Blues {
		fmt.Fprintf(d, "b%d:%d;", b.From, b.To)
	}
	return d.Sum64()
}
