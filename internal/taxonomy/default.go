package taxonomy

// Default returns the production taxonomy used for concert tagging.
// Curators maintain these tables; keep spellings in sync with the alias
// table below.
func Default() *Taxonomy {
	t := &Taxonomy{
		Categories: []Category{
			{
				Name: CategoryComposer,
				Tags: []string{
					"바흐", "헨델", "비발디", "하이든", "모차르트", "베토벤",
					"슈베르트", "멘델스존", "쇼팽", "슈만", "리스트", "브람스",
					"차이콥스키", "드보르자크", "무소르그스키", "생상스", "포레",
					"바그너", "베르디", "푸치니", "로시니", "파가니니", "사라사테",
					"브루크너", "엘가", "말러", "드뷔시", "라벨", "라흐마니노프",
					"시벨리우스", "프로코피예프", "쇼스타코비치", "거슈윈",
					"홀스트", "스트라빈스키", "바르톡",
				},
			},
			{
				Name: CategoryWorkForm,
				Tags: []string{
					"교향곡", "협주곡", "독주회", "실내악", "오페라",
					"합창", "성악", "발레",
				},
			},
			{
				Name: CategoryInstrument,
				Tags: []string{
					"피아노", "바이올린", "첼로", "비올라", "플루트",
					"클라리넷", "오보에", "호른", "트럼펫", "하프",
					"기타", "오르간", "오케스트라",
				},
			},
			{
				Name: CategoryEra,
				Tags: []string{"바로크", "고전", "낭만", "근현대"},
			},
			{
				Name: CategoryPerformer,
				Tags: []string{"해외연주자", "해외오케스트라"},
			},
		},
		EraMap: map[string][]string{
			"바로크": {"바흐", "헨델", "비발디"},
			"고전":  {"하이든", "모차르트", "베토벤"},
			"낭만": {
				"슈베르트", "멘델스존", "쇼팽", "슈만", "리스트", "브람스",
				"차이콥스키", "드보르자크", "무소르그스키", "생상스", "포레",
				"바그너", "베르디", "푸치니", "로시니", "파가니니", "사라사테",
				"브루크너", "엘가",
			},
			"근현대": {
				"말러", "드뷔시", "라벨", "라흐마니노프", "시벨리우스",
				"프로코피예프", "쇼스타코비치", "거슈윈", "홀스트",
				"스트라빈스키", "바르톡",
			},
		},
		AliasTable: map[string]string{
			"무소륵스키":   "무소르그스키",
			"무쏘르그스키":  "무소르그스키",
			"차이코프스키":  "차이콥스키",
			"챠이콥스키":   "차이콥스키",
			"드보르작":    "드보르자크",
			"드보르샤크":   "드보르자크",
			"생상":      "생상스",
			"쌩상스":     "생상스",
			"라프마니노프":  "라흐마니노프",
			"라흐마니놉":   "라흐마니노프",
			"버르토크":    "바르톡",
			"바르토크":    "바르톡",
			"쇼스타코비취":  "쇼스타코비치",
			"프로코피에프":  "프로코피예프",
			"멘델스죤":    "멘델스존",
			"드빗시":     "드뷔시",
		},
		SupplementaryComposers: map[string]string{
			"파헬벨":    "바로크",
			"알비노니":   "바로크",
			"텔레만":    "바로크",
			"퍼셀":     "바로크",
			"보케리니":   "고전",
			"글루크":    "고전",
			"비제":     "낭만",
			"그리그":    "낭만",
			"스메타나":   "낭만",
			"오펜바흐":   "낭만",
			"글린카":    "낭만",
			"브리튼":    "근현대",
			"코플런드":   "근현대",
			"피아졸라":   "근현대",
			"펜데레츠키":  "근현대",
			"윤이상":    "근현대",
			"진은숙":    "근현대",
		},
		SoloInstruments: []string{
			"피아노", "바이올린", "첼로", "비올라", "플루트",
			"클라리넷", "오보에", "호른", "트럼펫", "하프", "기타", "오르간",
		},
		OrchestraTag: "오케스트라",
	}
	t.buildIndexes()
	return t
}

// New builds a taxonomy from explicit tables. Intended for tests that need
// a minimal fixture instead of the full production vocabulary.
func New(categories []Category, eraMap map[string][]string, aliases map[string]string, supplementary map[string]string) *Taxonomy {
	t := &Taxonomy{
		Categories:             categories,
		EraMap:                 eraMap,
		AliasTable:             aliases,
		SupplementaryComposers: supplementary,
		OrchestraTag:           "오케스트라",
	}
	t.buildIndexes()
	return t
}
