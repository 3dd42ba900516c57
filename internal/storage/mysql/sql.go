package mysql

// -----------------------------------------------------------------------------
// WARP HALL
// -----------------------------------------------------------------------------

const listWarpHallSQL = `
SELECT StallNumber, StallName, IGN
FROM warp_hall
ORDER BY StallNumber
`

const getWarpHallSQL = `
SELECT StallNumber, StallName, IGN
FROM warp_hall
WHERE StallNumber = ?
`

// -----------------------------------------------------------------------------
// THE MALL
// -----------------------------------------------------------------------------

// Zero rows; only fails when a footprint column is missing (or the store is).
const probeMallFootprintSQL = `
SELECT stall_width, stall_depth
FROM the_mall
WHERE 1 = 0
`

// Footprint tier: NULL widths/depths fall back to the default 3x3.
const listMallFootprintSQL = `
SELECT
  StallNumber,
  StreetName,
  IGN,
  StallName,
  ItemsSold,
  COALESCE(stall_width, 3) AS stall_width,
  COALESCE(stall_depth, 3) AS stall_depth
FROM the_mall
ORDER BY StreetName, StallNumber
`

// Basic tier: the table has no footprint columns at all.
const listMallBasicSQL = `
SELECT StallNumber, StreetName, IGN, StallName, ItemsSold
FROM the_mall
ORDER BY StreetName, StallNumber
`

const getMallFootprintSQL = `
SELECT
  StallNumber,
  StreetName,
  IGN,
  StallName,
  ItemsSold,
  COALESCE(stall_width, 3) AS stall_width,
  COALESCE(stall_depth, 3) AS stall_depth
FROM the_mall
WHERE StreetName = ? AND StallNumber = ?
`

const getMallBasicSQL = `
SELECT StallNumber, StreetName, IGN, StallName, ItemsSold
FROM the_mall
WHERE StreetName = ? AND StallNumber = ?
`

// Newest first; ReviewID breaks ties between reviews created in the same second.
const listMallReviewsSQL = `
SELECT
  ReviewID,
  StreetName,
  StallNumber,
  ReviewerName,
  ReviewText,
  Rating,
  created_at,
  updated_at
FROM mall_reviews
WHERE StreetName = ? AND StallNumber = ?
ORDER BY created_at DESC, ReviewID DESC
`
