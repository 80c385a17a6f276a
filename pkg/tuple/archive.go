package tuple

import "github.com/flier/archiver/pkg/classify"

// ArchiveCategory implements classify.Marker for every tuple arity: each
// TupleN is archived as the engine's Tuple-like category, arity N, with
// elements saved/loaded positionally in V0..V(N-1) declaration order.

func (Tuple2[T0, T1]) ArchiveCategory() classify.Category { return classify.Tuple }
func (Tuple3[T0, T1, T2]) ArchiveCategory() classify.Category { return classify.Tuple }
func (Tuple4[T0, T1, T2, T3]) ArchiveCategory() classify.Category { return classify.Tuple }
func (Tuple5[T0, T1, T2, T3, T4]) ArchiveCategory() classify.Category { return classify.Tuple }
func (Tuple6[T0, T1, T2, T3, T4, T5]) ArchiveCategory() classify.Category { return classify.Tuple }
func (Tuple7[T0, T1, T2, T3, T4, T5, T6]) ArchiveCategory() classify.Category { return classify.Tuple }
