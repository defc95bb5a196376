package selector

// Resolve turns s into a Filter. inclusive picks <=/>= over </> at booking and date
// boundaries; the usual choice is true.
//
// Distinct-day date ranges include both ends whatever inclusive says.
func Resolve(s Selector, inclusive bool) (Filter, error) {
	if err := s.Validate(); err != nil {
		return Filter{}, err
	}

	lower, upper := OpGt, OpLt
	if inclusive {
		lower, upper = OpGe, OpLe
	}

	switch s.kind {
	case KindBookingRange:
		first, last := s.firstB, s.lastB
		if first.Day().Equal(last.Day()) {
			return Filter{Terms: []Term{{
				dayCond(OpEq, first.Day()),
				idCond(lower, first.ID),
				idCond(upper, last.ID),
			}}}, nil
		}
		return Filter{Terms: []Term{
			{dayCond(OpGt, first.Day()), dayCond(OpLt, last.Day())},
			{dayCond(OpEq, first.Day()), idCond(lower, first.ID)},
			{dayCond(OpEq, last.Day()), idCond(upper, last.ID)},
		}}, nil

	case KindDateRange:
		if s.first.Equal(s.last) {
			return Filter{Terms: []Term{{dayCond(OpEq, s.first)}}}, nil
		}
		return Filter{Terms: []Term{{dayCond(OpGe, s.first), dayCond(OpLe, s.last)}}}, nil

	case KindBooking:
		b := s.firstB
		return Filter{Terms: []Term{
			{dayCond(OpLt, b.Day())},
			{dayCond(OpEq, b.Day()), idCond(upper, b.ID)},
		}}, nil

	default: // KindDate
		return Filter{Terms: []Term{{dayCond(upper, s.first)}}}, nil
	}
}
