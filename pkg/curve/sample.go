package curve

// Sample evaluates the track on the given segment at loopedTime.
//
// While looping, neighbour indices wrap around the track and a segment whose
// end lies before its start is re-parametrized over the track span. Clamped
// tracks clamp neighbour indices at both ends. The interpolation law comes
// from the keyframe that ends the segment.
func Sample(t *Track, segment int, loopedTime float64, looping bool) Vec3 {
	n := len(t.keys)
	if segment < 0 {
		segment = 0
	}
	if segment > n-1 {
		segment = n - 1
	}

	var i0, i1, i2, i3 int
	if looping {
		i0 = (segment - 1 + n) % n
		i1 = segment % n
		i2 = (segment + 1) % n
		i3 = (segment + 2) % n
	} else {
		i0 = max(segment-1, 0)
		i1 = segment
		i2 = min(segment+1, n-1)
		i3 = min(segment+2, n-1)
	}

	t1 := t.times[i1]
	t2 := t.times[i2]
	time := loopedTime
	if looping && t2 <= t1 {
		span := t.times[n-1] - t.times[0]
		t2 += span
		if time < t1 {
			time += span
		}
	}

	var u float64
	if t2 != t1 {
		u = clamp01((time - t1) / (t2 - t1))
	}

	k1, k2 := t.keys[i1], t.keys[i2]
	if k2.Mode == CatmullRom {
		return CatmullRomVec(t.keys[i0].Value, k1.Value, k2.Value, t.keys[i3].Value, u)
	}
	return Lerp(k1.Value, k2.Value, u)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b Vec3, u float64) Vec3 {
	return Vec3{
		a[0] + (b[0]-a[0])*u,
		a[1] + (b[1]-a[1])*u,
		a[2] + (b[2]-a[2])*u,
	}
}

// CatmullRomScalar evaluates the uniform Catmull-Rom cubic between p1 and p2.
func CatmullRomScalar(p0, p1, p2, p3, u float64) float64 {
	u2 := u * u
	u3 := u2 * u
	return 0.5 * (2*p1 +
		(p2-p0)*u +
		(2*p0-5*p1+4*p2-p3)*u2 +
		(-p0+3*p1-3*p2+p3)*u3)
}

// CatmullRomVec applies CatmullRomScalar to each component independently.
func CatmullRomVec(p0, p1, p2, p3 Vec3, u float64) Vec3 {
	return Vec3{
		CatmullRomScalar(p0[0], p1[0], p2[0], p3[0], u),
		CatmullRomScalar(p0[1], p1[1], p2[1], p3[1], u),
		CatmullRomScalar(p0[2], p1[2], p2[2], p3[2], u),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
